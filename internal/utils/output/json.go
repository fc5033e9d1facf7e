package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/law-makers/vision-researcher/pkg/models"
)

// WriteJSON writes the session summary as indented JSON
func WriteJSON(w io.Writer, summary *models.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// SaveJSON writes the session summary to filepath
func SaveJSON(summary *models.Summary, filepath string) error {
	content, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
