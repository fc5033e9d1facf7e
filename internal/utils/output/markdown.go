package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/vision-researcher/internal/utils/url"
	"github.com/law-makers/vision-researcher/pkg/models"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// PageMarkdown converts a captured page's HTML to Markdown with links made
// absolute against pageURL
func PageMarkdown(htmlContent, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := href
			if u, err := urlutil.Resolve(base, href); err == nil {
				resolved = u.String()
			}
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s%s)", strings.TrimSpace(selec.Text()), resolved, titlePart)
			return &str
		},
	})

	cleaned, err := CleanHTML(htmlContent, pageURL)
	if err != nil {
		return "", err
	}
	return converter.ConvertString(cleaned)
}

// WriteMarkdown renders the session summary as GitHub-flavored Markdown
func WriteMarkdown(w io.Writer, summary *models.Summary) error {
	doc := markdown.NewMarkdown(w)

	doc.H1("Visual Audit Report")
	doc.PlainText("")
	doc.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + summary.SeedURL + "`"},
			{"Prompt", summary.Prompt},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Processed", fmt.Sprintf("%d of %d", summary.PagesProcessed, summary.Budget)},
			{"Elapsed", summary.Elapsed.Round(100 * time.Millisecond).String()},
			{"Average per Page", summary.AveragePerPage.Round(100 * time.Millisecond).String()},
			{"Stopped Because", reasonText(summary.Reason)},
		},
	})
	doc.PlainText("")

	skipped := 0
	for _, p := range summary.Pages {
		if p.Skipped {
			skipped++
		}
	}
	if skipped > 0 {
		doc.Warningf("%d page(s) could not be captured and were skipped.", skipped)
		doc.PlainText("")

		chart := piechart.NewPieChart(io.Discard, piechart.WithTitle("Pages"), piechart.WithShowData(true))
		chart.LabelAndIntValue("Processed", uint64(summary.PagesProcessed))
		chart.LabelAndIntValue("Skipped", uint64(skipped))
		doc.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		doc.PlainText("")
	}

	doc.H2("Pages")
	doc.PlainText("")
	if len(summary.Pages) == 0 {
		doc.PlainText("No pages were visited.")
		doc.PlainText("")
	} else {
		rows := make([][]string, len(summary.Pages))
		for i, p := range summary.Pages {
			rows[i] = []string{
				strconv.Itoa(i + 1),
				p.URL,
				pageStatus(p),
				fmt.Sprintf("%d/%d", p.AnsweredBands, p.Bands),
				strconv.Itoa(p.LinksFound),
			}
		}
		doc.Table(markdown.TableSet{
			Header: []string{"#", "URL", "Status", "Bands", "Links"},
			Rows:   rows,
		})
		doc.PlainText("")
	}

	for i, p := range summary.Pages {
		if p.Skipped {
			continue
		}
		doc.H3(fmt.Sprintf("%d. %s", i+1, p.URL))
		doc.PlainText("")
		if p.Report == "" {
			doc.Note("The vision service returned no answer for this page.")
		} else {
			doc.PlainText(p.Report)
		}
		doc.PlainText("")
	}

	if len(summary.Visited) > 0 {
		doc.Details("Visited URLs", strings.Join(summary.Visited, "\n"))
		doc.PlainText("")
	}

	doc.HorizontalRule()
	doc.PlainText("")
	doc.PlainText("*Report generated by vision-researcher*")

	return doc.Build()
}

// SaveMarkdown writes the Markdown session report to path
func SaveMarkdown(summary *models.Summary, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteMarkdown(file, summary)
}

func pageStatus(p models.PageResult) string {
	switch {
	case p.Skipped:
		return "skipped"
	case p.Report == "":
		return "no answer"
	default:
		return "analyzed"
	}
}

func reasonText(r models.TerminationReason) string {
	switch r {
	case models.ReasonBudgetExhausted:
		return "page budget reached"
	case models.ReasonNoMoreLinks:
		return "no unvisited links left"
	case models.ReasonCancelled:
		return "interrupted"
	default:
		return string(r)
	}
}
