package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/vision-researcher/pkg/models"
)

func sampleSummary() *models.Summary {
	return &models.Summary{
		SeedURL:        "https://example.com",
		Prompt:         "Is there a cookie banner?",
		Budget:         5,
		PagesProcessed: 2,
		Visited:        []string{"https://example.com", "https://example.com/broken", "https://example.com/about"},
		Pages: []models.PageResult{
			{URL: "https://example.com", RequestID: "a1", Report: "Yes, at the bottom.", Bands: 3, AnsweredBands: 2, LinksFound: 2, Duration: 1500 * time.Millisecond},
			{URL: "https://example.com/broken", RequestID: "b2", Skipped: true, Error: "FETCH_FAILED: screenshot request failed"},
			{URL: "https://example.com/about", RequestID: "c3", Bands: 1, Error: "NO_ANALYSIS: no band produced an answer"},
		},
		Reason:         models.ReasonNoMoreLinks,
		StartedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:        4 * time.Second,
		AveragePerPage: 2 * time.Second,
	}
}

func TestSaveReport_Formats(t *testing.T) {
	dir := t.TempDir()
	summary := sampleSummary()

	jsonPath := filepath.Join(dir, "nested", "report.json")
	if err := SaveReport(summary, jsonPath); err != nil {
		t.Fatalf("SaveReport json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.PagesProcessed != 2 || decoded.Reason != models.ReasonNoMoreLinks || len(decoded.Pages) != 3 {
		t.Errorf("unexpected decoded summary %+v", decoded)
	}

	csvPath := filepath.Join(dir, "report.csv")
	if err := SaveReport(summary, csvPath); err != nil {
		t.Fatalf("SaveReport csv: %v", err)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(records))
	}
	if records[1][2] != "analyzed" || records[2][2] != "skipped" || records[3][2] != "no answer" {
		t.Errorf("unexpected statuses %v %v %v", records[1][2], records[2][2], records[3][2])
	}
	if records[1][6] != "1500" {
		t.Errorf("expected duration in ms, got %q", records[1][6])
	}

	if err := SaveReport(summary, filepath.Join(dir, "report.md")); err != nil {
		t.Fatalf("SaveReport md: %v", err)
	}

	if err := SaveReport(summary, filepath.Join(dir, "report.xml")); err == nil {
		t.Error("expected unsupported extension to fail")
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sampleSummary()); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Visual Audit Report",
		"Is there a cookie banner?",
		"2 of 5",
		"no unvisited links left",
		"Yes, at the bottom.",
		"1 page(s) could not be captured",
		"mermaid",
		"https://example.com/about",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleSummary()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"reason": "no_unvisited_links"`) {
		t.Errorf("unexpected JSON %s", buf.String())
	}
}

func TestPageMarkdown(t *testing.T) {
	html := `<html><head><script>alert(1)</script><style>p{}</style></head>
<body><h1 class="x">Title</h1><p>Hello <a href="/about" onclick="x()">About us</a></p></body></html>`

	got, err := PageMarkdown(html, "https://example.com/docs/")
	if err != nil {
		t.Fatalf("PageMarkdown: %v", err)
	}

	if !strings.Contains(got, "# Title") {
		t.Errorf("expected heading, got %q", got)
	}
	if !strings.Contains(got, "[About us](https://example.com/about)") {
		t.Errorf("expected absolute link, got %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("scripts must be stripped, got %q", got)
	}
}

func TestCleanHTML(t *testing.T) {
	got, err := CleanHTML(`<div id="a" style="x"><img src="i.png" alt="logo" width="3"><a href="../about#team" class="n">Team</a><form><input></form></div>`,
		"https://example.com/docs/")
	if err != nil {
		t.Fatalf("CleanHTML: %v", err)
	}
	if strings.Contains(got, "style=") || strings.Contains(got, "width=") || strings.Contains(got, "<form") {
		t.Errorf("expected attributes and forms removed, got %q", got)
	}
	if !strings.Contains(got, `alt="logo"`) {
		t.Errorf("expected img alt kept, got %q", got)
	}
	if !strings.Contains(got, `src="https://example.com/docs/i.png"`) {
		t.Errorf("expected absolute image source, got %q", got)
	}
	if !strings.Contains(got, `href="https://example.com/about#team"`) || strings.Contains(got, "class=") {
		t.Errorf("expected absolute link without class, got %q", got)
	}

	relative, err := CleanHTML(`<a href="/x">x</a>`, "not a url")
	if err != nil {
		t.Fatalf("CleanHTML: %v", err)
	}
	if !strings.Contains(relative, `href="/x"`) {
		t.Errorf("expected links untouched without a base, got %q", relative)
	}
}
