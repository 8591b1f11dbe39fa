package console

import "sync/atomic"

type DisplayFlags uint8

const (
	ShowTimestamps   DisplayFlags = 0x01
	ShowMilliseconds DisplayFlags = 0x02
	ShowDate         DisplayFlags = 0x04
	ShowColor        DisplayFlags = 0x08
	ShowSeverity     DisplayFlags = 0x10
	WideHexDump      DisplayFlags = 0x80

	DefaultDisplay = ShowTimestamps | ShowColor
)

// SeverityMask has bit 1<<s set for every enabled filterable severity s.
type SeverityMask uint8

const AllSeverities = SeverityMask(1<<Verbose | 1<<Debug | 1<<Info | 1<<Warning)

func (m SeverityMask) Has(s Severity) bool {
	return m&(1<<s) != 0
}

// Registry holds the process-wide display and verbosity state. Every
// method is safe for concurrent use.
type Registry struct {
	display atomic.Uint32
	enabled atomic.Uint32
	command atomic.Bool
}

func newRegistry(flags DisplayFlags, mask SeverityMask) *Registry {
	r := &Registry{}
	r.display.Store(uint32(flags))
	r.enabled.Store(uint32(mask & AllSeverities))
	return r
}

// Muted reports whether a line at lvl is suppressed. Command mode
// silences every severity; explicit colors are never muted.
func (r *Registry) Muted(lvl Level) bool {
	s, ok := lvl.(Severity)
	if !ok {
		return false
	}
	if r.command.Load() {
		return true
	}
	return s.Filterable() && !r.Mask().Has(s)
}

func (r *Registry) Mask() SeverityMask {
	return SeverityMask(r.enabled.Load())
}

// ToggleSeverity flips the enable bit of a filterable severity and
// returns the resulting mask.
func (r *Registry) ToggleSeverity(s Severity) SeverityMask {
	if !s.Filterable() {
		return r.Mask()
	}
	for {
		old := r.enabled.Load()
		next := old ^ (1 << s)
		if r.enabled.CompareAndSwap(old, next) {
			return SeverityMask(next)
		}
	}
}

func (r *Registry) Flags() DisplayFlags {
	return DisplayFlags(r.display.Load())
}

func (r *Registry) Has(f DisplayFlags) bool {
	return r.Flags()&f == f
}

func (r *Registry) SetFlags(f DisplayFlags) {
	r.display.Or(uint32(f))
}

func (r *Registry) ClearFlags(f DisplayFlags) {
	r.display.And(^uint32(f))
}

func (r *Registry) ToggleFlags(f DisplayFlags) DisplayFlags {
	for {
		old := r.display.Load()
		next := old ^ uint32(f)
		if r.display.CompareAndSwap(old, next) {
			return DisplayFlags(next)
		}
	}
}

func (r *Registry) CommandMode() bool {
	return r.command.Load()
}

func (r *Registry) setCommandMode(on bool) {
	r.command.Store(on)
}
