package console

import "fmt"

// Level selects how a line is filtered and colored. It is either a
// Severity or an explicit Color.
type Level interface {
	sgr() int
	isLevel()
}

type Severity uint8

const (
	Normal Severity = iota
	Verbose
	Debug
	Info
	Warning
	Alert
	Error
	Critical
	// RawNoTimestamp lines skip timestamps, colors and severity tags.
	RawNoTimestamp
)

var severityNames = [...]string{
	Normal:         "normal",
	Verbose:        "verbose",
	Debug:          "debug",
	Info:           "info",
	Warning:        "warning",
	Alert:          "alert",
	Error:          "error",
	Critical:       "critical",
	RawNoTimestamp: "raw",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Filterable reports whether s can be switched off from command mode.
func (s Severity) Filterable() bool {
	return s >= Verbose && s <= Warning
}

func (s Severity) letter() byte {
	return severityLetters[s&7]
}

func (s Severity) sgr() int { return int(palette[s&7]) }
func (Severity) isLevel()   {}

// Color is an ANSI SGR foreground code used instead of the severity palette.
type Color uint8

const (
	Red        Color = 31
	Green      Color = 32
	Yellow     Color = 33
	Magenta    Color = 35
	Cyan       Color = 36
	White      Color = 37
	BrightRed  Color = 91
	BrightBlue Color = 94
)

func (c Color) sgr() int { return int(c & 0x7f) }
func (Color) isLevel()   {}

var palette = [8]Color{White, Cyan, Green, BrightBlue, Yellow, Magenta, Red, BrightRed}

const severityLetters = " VDIWAEC"
