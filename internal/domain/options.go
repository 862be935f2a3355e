package domain

import (
	"fmt"
	"strings"
)

// RunOptions is a bit-set of independent run toggles
type RunOptions uint

const (
	// Randomize shuffles the order of test cases
	Randomize RunOptions = 1 << iota
	// WaitForDebugger makes the test process pause until Continue is called
	WaitForDebugger
	// Repeat re-runs the test process while all assertions pass
	Repeat
)

// Has reports whether all bits of o are set
func (r RunOptions) Has(o RunOptions) bool {
	return r&o == o
}

func (r RunOptions) String() string {
	var names []string
	if r.Has(Randomize) {
		names = append(names, "randomize")
	}
	if r.Has(WaitForDebugger) {
		names = append(names, "wait")
	}
	if r.Has(Repeat) {
		names = append(names, "repeat")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// LogLevel selects how much the test framework reports while running
type LogLevel int

const (
	// LogUnits reports unit start/finish and failures
	LogUnits LogLevel = iota
	// LogMessages additionally reports framework messages and warnings
	LogMessages
	// LogAll reports everything including passed assertions
	LogAll
)

var logLevelNames = []string{"units", "messages", "all"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(logLevelNames) {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return logLevelNames[l]
}

// ParseLogLevel converts a level name to a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	for i, name := range logLevelNames {
		if strings.EqualFold(s, name) {
			return LogLevel(i), nil
		}
	}
	return LogUnits, fmt.Errorf("unknown log level %q (expected one of %s)", s, strings.Join(logLevelNames, ", "))
}
