package cli

import "testexe/internal/config"

// Flags holds command-line flags
type Flags struct {
	Processors   int
	Filter       string
	Only         int
	Shuffle      bool
	Wait         bool
	Repeat       bool
	LogLevel     string
	ReportFormat string
	ScanPath     string
	FailFast     bool
	OnlyFailed   bool
	OpenFaills   bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:   f.Processors,
		Filter:       f.Filter,
		Only:         f.Only,
		Shuffle:      f.Shuffle,
		Wait:         f.Wait,
		Repeat:       f.Repeat,
		LogLevel:     f.LogLevel,
		ReportFormat: f.ReportFormat,
		ScanPath:     f.ScanPath,
		FailFast:     f.FailFast,
		OnlyFailed:   f.OnlyFailed,
		OpenFaills:   f.OpenFaills,
	}
}
