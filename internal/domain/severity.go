package domain

// Severity classifies a test message
type Severity int

const (
	Info Severity = iota
	Error
	// Fatal is reserved for a test process that ended unexpectedly
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "info"
	}
}
