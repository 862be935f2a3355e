package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeExecutable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unit_tests")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Dialect
	}{
		{"google", "\x7fELF...--gtest_list_tests...--gui_wait...", GoogleTest},
		{"google without header", "\x7fELF...--gtest_list_tests...", GoogleTestNoHeader},
		{"boost", "\x7fELF...list_content...run_test...gui_wait...#waiting", BoostTest},
		{"boost without header", "\x7fELF...list_content...run_test...", BoostTestNoHeader},
		{"nunit", "MZ...nunit.framework...", NUnit},
		{"unsupported", "#!/bin/sh\necho hello\n", Unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, err := Classify(writeExecutable(t, tt.content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dialect != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, dialect)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := Classify("/non/existent/unit_tests"); err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestScanMarkers_AcrossChunks(t *testing.T) {
	// Place the marker so that it straddles the 64KiB read boundary
	content := strings.Repeat("x", 64*1024-5) + "--gtest_list_tests" + strings.Repeat("y", 100)
	found, err := scanMarkers(bytes.NewReader([]byte(content)), markers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found[string(markerGoogleTest)] {
		t.Error("expected marker across chunk boundary to be found")
	}
	if found[string(markerNUnit)] {
		t.Error("unexpected nunit marker")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{"google without header", "--gtest_list_tests", ErrGoogleTestNoHeader},
		{"boost without header", "list_content run_test", ErrBoostTestNoHeader},
		{"unsupported", "plain", ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(writeExecutable(t, tt.content), &recorder{}, Options{})
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}

	// The uninstrumented outcomes must stay distinguishable from unsupported
	if errors.Is(ErrGoogleTestNoHeader, ErrUnsupported) || errors.Is(ErrBoostTestNoHeader, ErrUnsupported) {
		t.Error("uninstrumented errors must not collapse into ErrUnsupported")
	}
}

func TestNew_Adapters(t *testing.T) {
	path := writeExecutable(t, "MZ nunit.framework")
	a, err := New(path, &recorder{}, Options{NUnitRunner: "nunit-runner", NUnitRunnerX86: "nunit-runner-x86"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Dialect() != NUnit {
		t.Errorf("expected nunit adapter, got %s", a.Dialect())
	}
	cmd := a.Command()
	if cmd.Path != "nunit-runner" || len(cmd.Args) != 1 || cmd.Args[0] != path {
		t.Errorf("unexpected command %+v", cmd)
	}

	a, err = New(writeExecutable(t, "--gtest_list_tests --gui_wait"), &recorder{}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Dialect() != GoogleTest || a.ListArgs()[0] != "--gtest_list_tests" {
		t.Errorf("unexpected adapter %s %v", a.Dialect(), a.ListArgs())
	}
}
