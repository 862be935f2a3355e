package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir, err := os.MkdirTemp("", "testexe-scan-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create test files
	testFiles := []struct {
		path string
		mode os.FileMode
	}{
		{"build/unit_tests", 0755},
		{"build/sub/boost_tests", 0755},
		{"bin/Release/Tests.dll", 0644},
		{"build/libcore.so", 0755},
		{"build/notes.txt", 0644},
		{"node_modules/some/tool", 0755},
		{".git/hooks/pre-commit", 0755},
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file.path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file.path, err)
		}
		if err := os.WriteFile(fullPath, []byte("test"), file.mode); err != nil {
			t.Fatalf("failed to create file %s: %v", file.path, err)
		}
	}

	scanner := NewScanner([]string{"node_modules"})

	t.Run("scans executables correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var rel []string
		for _, r := range results {
			p, _ := filepath.Rel(tmpDir, r)
			rel = append(rel, filepath.ToSlash(p))
		}
		sort.Strings(rel)

		expected := []string{"bin/Release/Tests.dll", "build/sub/boost_tests", "build/unit_tests"}
		if len(rel) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, rel)
		}
		for i := range expected {
			if rel[i] != expected[i] {
				t.Errorf("expected %s, got %s", expected[i], rel[i])
			}
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "build", "notes.txt"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name     string
		mode     os.FileMode
		expected bool
	}{
		{"unit_tests", 0755, true},
		{"unit_tests", 0644, false},
		{"Tests.dll", 0644, true},
		{"Tests.EXE", 0644, true},
		{"libfoo.so", 0755, false},
		{"run.sh", 0755, false},
		{"dir", os.ModeDir | 0755, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCandidate(tt.name, tt.mode); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
