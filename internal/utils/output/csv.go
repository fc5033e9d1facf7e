package output

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/law-makers/vision-researcher/pkg/models"
)

var csvHeader = []string{
	"url", "request_id", "status", "bands", "answered_bands",
	"links_found", "duration_ms", "error", "report",
}

// SaveCSV writes one row per visited page. Returns an error on failure.
func SaveCSV(summary *models.Summary, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range summary.Pages {
		row := []string{
			p.URL,
			p.RequestID,
			pageStatus(p),
			strconv.Itoa(p.Bands),
			strconv.Itoa(p.AnsweredBands),
			strconv.Itoa(p.LinksFound),
			strconv.FormatInt(p.Duration.Milliseconds(), 10),
			p.Error,
			p.Report,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
