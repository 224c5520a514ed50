package settings

// LogEvent describes a recovered fault: an unreadable record, a failed
// write, a listener error surfaced by a publish, or a page rule that could
// not be evaluated.
type LogEvent struct {
	Op  string
	Key string
	Err error
}

// Logger records recovered faults. Load paths stay total, so the logger is
// the only place storage corruption becomes visible.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}
