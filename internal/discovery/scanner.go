package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans a directory for candidate test executables
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// IsCandidate reports whether a file may be a test executable: a program
// with an execute bit, or a Windows executable or .NET assembly
func IsCandidate(name string, mode os.FileMode) bool {
	if !mode.IsRegular() {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".exe", ".dll":
		return true
	case ".so", ".dylib", ".sh", ".py":
		return false
	}
	return mode.Perm()&0111 != 0
}

// Scan finds all candidate executables in the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var executables []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if IsCandidate(d.Name(), info.Mode()) {
			executables = append(executables, path)
		}
		return nil
	})

	return executables, err
}
