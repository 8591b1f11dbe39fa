package platform

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

func (h *Host) Identity() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "Linux"
	}
	return fmt.Sprintf("Host: %s   %s %s (%s)",
		unix.ByteSliceToString(u.Nodename[:]),
		unix.ByteSliceToString(u.Sysname[:]),
		unix.ByteSliceToString(u.Release[:]),
		unix.ByteSliceToString(u.Machine[:]))
}

func (h *Host) Memory() string {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return "Free Memory: unknown"
	}
	unit := uint64(si.Unit)
	return fmt.Sprintf("Free Memory: %s   Total: %s   Min Free: %s",
		formatKB(uint64(si.Freeram)*unit), formatKB(uint64(si.Totalram)*unit), formatKB(h.MinFreeMemory()))
}

// Uptime is the system uptime, not the process lifetime.
func (h *Host) Uptime() time.Duration {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return h.clock.Since(h.started)
	}
	return time.Duration(si.Uptime) * time.Second
}

func freeMemory() uint64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return 0
	}
	return uint64(si.Freeram) * uint64(si.Unit)
}
