// Package output writes session reports and converted pages to disk
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/vision-researcher/pkg/models"
)

// SaveReport writes the summary in the format implied by the file extension
func SaveReport(summary *models.Summary, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(summary, path)
	case ".csv":
		return SaveCSV(summary, path)
	case ".md", ".markdown":
		return SaveMarkdown(summary, path)
	default:
		return fmt.Errorf("unsupported report format %q (use .json, .csv or .md)", filepath.Ext(path))
	}
}
