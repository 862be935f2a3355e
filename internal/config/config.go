package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"testexe/internal/domain"
	"testexe/internal/parser"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	ScanPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	DatabaseDSN    string

	// Runner settings
	NUnitRunner    string
	NUnitRunnerX86 string

	// Execution settings
	Processors int

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		ScanPath:       DefaultScanPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		NUnitRunner:    DefaultNUnitRunner,
		NUnitRunnerX86: DefaultNUnitRunnerX86,
		Processors:     DefaultProcessors,
		Flags:          Flags{Processors: DefaultProcessors, LogLevel: DefaultLogLevel, ReportFormat: DefaultReportFormat},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config, applies the environment and then flags
func Load(flags Flags) *Config {
	cfg := New()

	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))
	cfg.applyEnv()

	cfg.Flags = flags
	if flags.Processors > 0 {
		cfg.Processors = flags.Processors
	}
	if cfg.Flags.LogLevel == "" {
		cfg.Flags.LogLevel = DefaultLogLevel
	}
	if cfg.Flags.ReportFormat == "" {
		cfg.Flags.ReportFormat = DefaultReportFormat
	}

	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvNUnitRunner); v != "" {
		c.NUnitRunner = v
	}
	if v := os.Getenv(EnvNUnitRunnerX86); v != "" {
		c.NUnitRunnerX86 = v
	}
	if v := os.Getenv(EnvResultsDir); v != "" {
		c.OutputJSONDir = v
	}
	c.DatabaseDSN = os.Getenv(EnvDatabaseDSN)
}

// GetScanPath returns the directory to scan, using flag if provided
func (c *Config) GetScanPath() string {
	if c.Flags.ScanPath != "" {
		// If ScanPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.ScanPath) {
			return c.Flags.ScanPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.ScanPath)
	}
	return filepath.Join(c.ProjectPath, c.ScanPath)
}

// GetOutputPath returns the full path to the output JSON file so run and faills use the same file.
// Resolves to an absolute path regardless of cwd.
func (c *Config) GetOutputPath() string {
	dir := c.OutputJSONDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.ProjectPath, dir)
	}
	p := filepath.Join(dir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetParserOptions returns the adapter settings
func (c *Config) GetParserOptions() parser.Options {
	return parser.Options{NUnitRunner: c.NUnitRunner, NUnitRunnerX86: c.NUnitRunnerX86}
}

// GetRunOptions converts the run flags to run options
func (c *Config) GetRunOptions() domain.RunOptions {
	var options domain.RunOptions
	if c.Flags.Shuffle {
		options |= domain.Randomize
	}
	if c.Flags.Wait {
		options |= domain.WaitForDebugger
	}
	if c.Flags.Repeat {
		options |= domain.Repeat
	}
	return options
}

// GetLogLevel parses the log level flag
func (c *Config) GetLogLevel() (domain.LogLevel, error) {
	return domain.ParseLogLevel(c.Flags.LogLevel)
}
