// Package ota tracks a firmware update on behalf of the console: it keeps
// the busy flag the poll loop reports and narrates progress.
package ota

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Reporter receives the tracker's messages. *console.Console and
// *console.Logger satisfy it.
type Reporter interface {
	Alert(format string, args ...any)
	Debug(format string, args ...any)
}

type ErrorCode int

const (
	AuthFailed ErrorCode = iota
	BeginFailed
	ConnectFailed
	ReceiveFailed
	EndFailed
)

func (e ErrorCode) String() string {
	switch e {
	case AuthFailed:
		return "Auth Failed"
	case BeginFailed:
		return "Begin Failed"
	case ConnectFailed:
		return "Connect Failed"
	case ReceiveFailed:
		return "Receive Failed"
	case EndFailed:
		return "End Failed"
	default:
		return fmt.Sprintf("Unknown Error %d", int(e))
	}
}

// progressEvery throttles progress lines to the first of every this many
// callbacks.
const progressEvery = 8

type Tracker struct {
	r    Reporter
	busy atomic.Bool

	mu    sync.Mutex
	calls int
}

func NewTracker(r Reporter) *Tracker {
	return &Tracker{r: r}
}

// Busy implements console.Updater.
func (t *Tracker) Busy() bool {
	return t.busy.Load()
}

// Start marks an update of kind ("sketch", "filesystem") as running.
func (t *Tracker) Start(kind string) {
	t.mu.Lock()
	t.calls = 0
	t.mu.Unlock()
	t.busy.Store(true)
	t.r.Alert("Started updating %s", kind)
}

func (t *Tracker) Progress(done, total uint64) {
	t.mu.Lock()
	report := t.calls%progressEvery == 0
	t.calls++
	t.mu.Unlock()
	if !report {
		return
	}
	pct := uint64(0)
	if total > 0 {
		pct = done * 100 / total
	}
	t.r.Debug("Progress: %d%%", pct)
}

func (t *Tracker) End() {
	t.busy.Store(false)
	t.r.Alert("OTA update complete!")
	t.r.Alert("About to restart, please reconnect remote terminal")
}

func (t *Tracker) Fail(code ErrorCode) {
	t.busy.Store(false)
	t.r.Alert("Error[%d]: %s", int(code), code)
}
