package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters names by wildcard pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters executables by their file name
// Supports patterns like "*_tests" or "*Payment*"
func (f *Filter) FilterByName(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}

	var filtered []string
	for _, path := range paths {
		if f.Match(filepath.Base(path), pattern) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}

// Match reports whether name matches pattern. A pattern without wildcards
// matches any name containing it; "*" and "?" work as in filepath.Match, and
// "*a*b*" also matches any name containing every part.
func (f *Filter) Match(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") {
		hasNonEmptyPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			if !strings.Contains(name, part) {
				return false
			}
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}
