package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/law-makers/vision-researcher/internal/config"
	"github.com/law-makers/vision-researcher/internal/ui"
	"github.com/law-makers/vision-researcher/internal/utils/output"
	"github.com/law-makers/vision-researcher/pkg/models"
	"github.com/schollz/progressbar/v3"
)

// printer renders session progress for humans. In JSON mode it stays silent
// until the final summary.
type printer struct {
	out   io.Writer
	json  bool
	quiet bool
	bar   *progressbar.ProgressBar
	// showBar is false when stderr is not a terminal
	showBar bool
}

func newPrinter(out io.Writer, cfg *config.Config) *printer {
	return &printer{
		out:     out,
		json:    cfg.JSONLog,
		quiet:   cfg.Quiet,
		showBar: !cfg.JSONLog && !cfg.Quiet && isTerminal(os.Stderr),
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// progress tracks band analysis of the current page
func (p *printer) progress(done, total int) {
	if !p.showBar {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Analyzing bands"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
	if done >= total {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// page prints the report of one page as soon as it is available
func (p *printer) page(result models.PageResult, report *models.Report) {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	if p.json || p.quiet {
		return
	}

	fmt.Fprintf(p.out, "\n%s%s%s", ui.ColorBold+ui.ColorCyan, result.URL, ui.ColorReset)
	if result.StatusCode != 0 {
		fmt.Fprintf(p.out, " %s", ui.Status(result.StatusCode))
	}
	fmt.Fprintln(p.out)
	switch {
	case result.Skipped:
		fmt.Fprintf(p.out, "  %s\n", ui.Error("skipped: "+result.Error))
	case report == nil:
		fmt.Fprintf(p.out, "  %s\n", ui.Info("no analysis available"))
	default:
		for _, line := range strings.Split(report.Text, "\n") {
			fmt.Fprintf(p.out, "  %s\n", line)
		}
		fmt.Fprintf(p.out, "  %s\n", ui.Info(fmt.Sprintf("%d/%d bands answered, %d links, %s",
			result.AnsweredBands, result.Bands, result.LinksFound, result.Duration.Round(100 * time.Millisecond))))
	}
}

// summary prints the end-of-session statistics
func (p *printer) summary(s *models.Summary) error {
	if p.json {
		return output.WriteJSON(p.out, s)
	}
	if p.quiet {
		return nil
	}

	fmt.Fprintf(p.out, "\n%s\n", ui.Bold("Audit complete"))
	fmt.Fprintf(p.out, "  Pages processed:  %s\n", ui.Success(fmt.Sprintf("%d", s.PagesProcessed)))
	fmt.Fprintf(p.out, "  URLs visited:     %d\n", len(s.Visited))
	fmt.Fprintf(p.out, "  Elapsed:          %s\n", s.Elapsed.Round(100 * time.Millisecond))
	fmt.Fprintf(p.out, "  Average per page: %s\n", s.AveragePerPage.Round(100 * time.Millisecond))
	fmt.Fprintf(p.out, "  Stopped because:  %s\n", string(s.Reason))
	return nil
}
