package console

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
)

// Platform supplies the figures shown in the diagnostics panel and
// performs restarts. Its strings are shown as-is.
type Platform interface {
	Identity() string
	Resources() string
	Memory() string
	Uptime() time.Duration
	ResetReason() string
	// MinFreeMemory is the lowest free memory seen so far in bytes, or 0
	// when unknown.
	MinFreeMemory() uint64
	// Restart does not return on success.
	Restart() error
}

var errRestartUnsupported = errors.New("console: restart not supported on this platform")

type basicPlatform struct {
	clock   clock.Clock
	started time.Time
}

func newBasicPlatform(c clock.Clock) *basicPlatform {
	return &basicPlatform{clock: c, started: c.Now()}
}

func (p *basicPlatform) Identity() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

func (p *basicPlatform) Resources() string {
	return fmt.Sprintf("CPU: %d core(s)", runtime.NumCPU())
}

func (p *basicPlatform) Memory() string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf("Heap In Use: %d KB", ms.HeapInuse/1024)
}

func (p *basicPlatform) Uptime() time.Duration {
	return p.clock.Since(p.started)
}

func (p *basicPlatform) ResetReason() string { return "Unknown" }

func (p *basicPlatform) MinFreeMemory() uint64 { return 0 }

func (p *basicPlatform) Restart() error { return errRestartUnsupported }
