package ui

import "testexe/internal/domain"

// Viewer displays run reports in an interactive TUI
type Viewer interface {
	View(report *domain.RunReport) error
}
