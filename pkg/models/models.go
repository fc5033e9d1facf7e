package models

import "time"

// Screenshot is a full-page raster capture of a rendered page.
// It is either a fetchable reference (URL) or inline bytes (Data).
type Screenshot struct {
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
	ContentType string `json:"content_type,omitempty"`
}

// Inline reports whether the screenshot bytes are already in memory
func (s *Screenshot) Inline() bool {
	return s != nil && len(s.Data) > 0
}

// PageContent is the result of capturing exactly one URL
type PageContent struct {
	URL        string        `json:"url"`
	Screenshot *Screenshot   `json:"screenshot,omitempty"`
	HTML       string        `json:"-"`
	HTMLURL    string        `json:"html_url,omitempty"`
	// StatusCode is the document status when the backend can observe it
	StatusCode int           `json:"status_code,omitempty"`
	CapturedAt time.Time     `json:"captured_at"`
	Duration   time.Duration `json:"duration"`
}

// Band is a horizontal slice [Top, Bottom) of a screenshot spanning its full width
type Band struct {
	Index  int `json:"index"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Height returns the pixel height of the band
func (b Band) Height() int {
	return b.Bottom - b.Top
}

// BandAnswer is the vision model's answer for a single band
type BandAnswer struct {
	Band Band   `json:"band"`
	Text string `json:"text"`
}

// Report is the combined analysis of one screenshot.
// Answers holds only the bands that produced text, in band order.
type Report struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	BandCount int           `json:"band_count"`
	Answers   []BandAnswer  `json:"answers,omitempty"`
	Text      string        `json:"text"`
	Duration  time.Duration `json:"duration"`
}

// PageResult records what happened to one processed or skipped page
type PageResult struct {
	URL           string        `json:"url"`
	RequestID     string        `json:"request_id"`
	Screenshot    string        `json:"screenshot,omitempty"`
	Report        string        `json:"report,omitempty"`
	Bands         int           `json:"bands"`
	AnsweredBands int           `json:"answered_bands"`
	LinksFound    int           `json:"links_found"`
	StatusCode    int           `json:"status_code,omitempty"`
	Skipped       bool          `json:"skipped,omitempty"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// TerminationReason explains why a crawl session stopped
type TerminationReason string

const (
	ReasonBudgetExhausted TerminationReason = "budget_exhausted"
	ReasonNoMoreLinks     TerminationReason = "no_unvisited_links"
	ReasonCancelled       TerminationReason = "cancelled"
)

// Summary is the terminal report of a crawl session
type Summary struct {
	SeedURL        string            `json:"seed_url"`
	Prompt         string            `json:"prompt"`
	Budget         int               `json:"budget"`
	PagesProcessed int               `json:"pages_processed"`
	Visited        []string          `json:"visited"`
	Pages          []PageResult      `json:"pages"`
	Reason         TerminationReason `json:"reason"`
	StartedAt      time.Time         `json:"started_at"`
	Elapsed        time.Duration     `json:"elapsed"`
	AveragePerPage time.Duration     `json:"average_per_page"`
}
