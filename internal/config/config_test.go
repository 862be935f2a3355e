package config

import (
	"path/filepath"
	"testing"

	"testexe/internal/domain"
)

func TestConfig_GetScanPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				ScanPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "with scan path flag",
			config: &Config{
				ProjectPath: "/project",
				ScanPath:    ".",
				Flags: Flags{
					ScanPath: "build",
				},
			},
			expected: "/project/build",
		},
		{
			name: "absolute scan path",
			config: &Config{
				ProjectPath: "/project",
				ScanPath:    ".",
				Flags: Flags{
					ScanPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetScanPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetOutputPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"
	if got := cfg.GetOutputPath(); got != "/project/.testexe/test-results.json" {
		t.Errorf("expected %s, got %s", "/project/.testexe/test-results.json", got)
	}

	cfg.OutputJSONDir = "/var/results"
	if got := cfg.GetOutputPath(); got != "/var/results/test-results.json" {
		t.Errorf("expected %s, got %s", "/var/results/test-results.json", got)
	}
}

func TestConfig_GetRunOptions(t *testing.T) {
	tests := []struct {
		name     string
		flags    Flags
		expected domain.RunOptions
	}{
		{"none", Flags{}, 0},
		{"shuffle", Flags{Shuffle: true}, domain.Randomize},
		{"wait and repeat", Flags{Wait: true, Repeat: true}, domain.WaitForDebugger | domain.Repeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Flags: tt.flags}
			if got := cfg.GetRunOptions(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv(EnvNUnitRunner, "/opt/nunit/runner")
	t.Setenv(EnvResultsDir, filepath.Join("/tmp", "results"))
	t.Setenv(EnvDatabaseDSN, "user:pw@tcp(localhost:3306)/testexe")

	cfg := Load(Flags{Processors: 2})

	if cfg.NUnitRunner != "/opt/nunit/runner" {
		t.Errorf("expected NUnitRunner %s, got %s", "/opt/nunit/runner", cfg.NUnitRunner)
	}
	if cfg.NUnitRunnerX86 != DefaultNUnitRunnerX86 {
		t.Errorf("expected NUnitRunnerX86 %s, got %s", DefaultNUnitRunnerX86, cfg.NUnitRunnerX86)
	}
	if cfg.GetParserOptions().NUnitRunner != cfg.NUnitRunner {
		t.Error("parser options should carry the configured runner")
	}
	if cfg.OutputJSONDir != "/tmp/results" {
		t.Errorf("expected OutputJSONDir %s, got %s", "/tmp/results", cfg.OutputJSONDir)
	}
	if cfg.DatabaseDSN == "" {
		t.Error("expected DatabaseDSN from environment")
	}
	if cfg.Processors != 2 {
		t.Errorf("expected Processors %d, got %d", 2, cfg.Processors)
	}
	if level, err := cfg.GetLogLevel(); err != nil || level != domain.LogUnits {
		t.Errorf("expected default log level, got %v (%v)", level, err)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}
