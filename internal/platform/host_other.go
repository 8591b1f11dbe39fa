//go:build !linux

package platform

import (
	"fmt"
	"runtime"
	"time"
)

func (h *Host) Identity() string {
	return fmt.Sprintf("Host: %s/%s", runtime.GOOS, runtime.GOARCH)
}

func (h *Host) Memory() string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf("Heap In Use: %s   Sys: %s", formatKB(ms.HeapInuse), formatKB(ms.Sys))
}

func (h *Host) Uptime() time.Duration {
	return h.clock.Since(h.started)
}

// Free memory is not tracked here.
func freeMemory() uint64 {
	return 0
}
