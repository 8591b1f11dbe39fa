// Package platform reports host diagnostics for the console panel and
// restarts the process in place.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sys/unix"
)

// ResetReasonEnv carries the cause of the previous restart into the new
// process image.
const ResetReasonEnv = "DEVCONSOLE_RESET_REASON"

const (
	reasonPowerOn  = "Power On"
	reasonSoftware = "Software Restart"
)

// Host implements console.Platform for the machine running the process.
type Host struct {
	clock   clock.Clock
	started time.Time
	reason  string

	// BeforeRestart runs right before the process image is replaced,
	// typically to flush logs and restore the terminal.
	BeforeRestart func()
	// RestartFailed runs when the process image could not be replaced and
	// undoes BeforeRestart.
	RestartFailed func()

	exec func(argv0 string, argv, envv []string) error

	mu      sync.Mutex
	minFree uint64
}

func NewHost(c clock.Clock) *Host {
	reason := reasonPowerOn
	if r := os.Getenv(ResetReasonEnv); r != "" {
		reason = r
		os.Unsetenv(ResetReasonEnv)
	}
	return &Host{
		clock:   c,
		started: c.Now(),
		reason:  reason,
		exec:    unix.Exec,
	}
}

func (h *Host) Resources() string {
	return fmt.Sprintf("CPU Cores: %d   Goroutines: %d   Go: %s",
		runtime.NumCPU(), runtime.NumGoroutine(), runtime.Version())
}

func (h *Host) ResetReason() string {
	return h.reason
}

// MinFreeMemory samples free memory and returns the lowest value seen.
func (h *Host) MinFreeMemory() uint64 {
	free := freeMemory()
	h.mu.Lock()
	defer h.mu.Unlock()
	if free != 0 && (h.minFree == 0 || free < h.minFree) {
		h.minFree = free
	}
	return h.minFree
}

// Restart re-executes the running binary with the same arguments. It
// only returns on failure.
func (h *Host) Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("platform: locate executable: %w", err)
	}
	env := slices.DeleteFunc(os.Environ(), func(kv string) bool {
		return strings.HasPrefix(kv, ResetReasonEnv+"=")
	})
	env = append(env, ResetReasonEnv+"="+reasonSoftware)

	if h.BeforeRestart != nil {
		h.BeforeRestart()
	}
	if err := h.exec(exe, os.Args, env); err != nil {
		if h.RestartFailed != nil {
			h.RestartFailed()
		}
		return fmt.Errorf("platform: exec %s: %w", exe, err)
	}
	return nil
}

func formatKB(b uint64) string {
	return fmt.Sprintf("%d KB", b/1024)
}
