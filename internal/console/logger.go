package console

// Logger reports through a Console under a fixed tag.
type Logger struct {
	c   *Console
	tag string
}

func (c *Console) Tagged(tag string) *Logger {
	return &Logger{c: c, tag: tag}
}

func (l *Logger) Print(format string, args ...any)    { l.c.Report(l.tag, Normal, format, args...) }
func (l *Logger) Verbose(format string, args ...any)  { l.c.Report(l.tag, Verbose, format, args...) }
func (l *Logger) Debug(format string, args ...any)    { l.c.Report(l.tag, Debug, format, args...) }
func (l *Logger) Info(format string, args ...any)     { l.c.Report(l.tag, Info, format, args...) }
func (l *Logger) Warning(format string, args ...any)  { l.c.Report(l.tag, Warning, format, args...) }
func (l *Logger) Alert(format string, args ...any)    { l.c.Report(l.tag, Alert, format, args...) }
func (l *Logger) Error(format string, args ...any)    { l.c.Report(l.tag, Error, format, args...) }
func (l *Logger) Critical(format string, args ...any) { l.c.Report(l.tag, Critical, format, args...) }
func (l *Logger) Raw(format string, args ...any)      { l.c.Report(l.tag, RawNoTimestamp, format, args...) }

func (l *Logger) Colored(color Color, format string, args ...any) {
	l.c.Report(l.tag, color, format, args...)
}

func (l *Logger) HexDump(msg string, data []byte, sev Severity) {
	l.c.HexDump(l.tag, msg, data, sev)
}
