package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"testexe/internal/domain"
)

// Export writes report to w as "json" or "yaml"
func Export(w io.Writer, report *domain.RunReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q (expected json or yaml)", format)
	}
}
