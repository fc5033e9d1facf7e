// internal/cli/capture.go
package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/vision-researcher/internal/config"
	"github.com/law-makers/vision-researcher/internal/ui"
	"github.com/law-makers/vision-researcher/internal/utils/output"
	urlutil "github.com/law-makers/vision-researcher/internal/utils/url"
)

var (
	captureFormat    string
	captureOutputDir string
)

// captureCmd captures a single page without analyzing it
var captureCmd = &cobra.Command{
	Use:   "capture <url>",
	Short: "Capture one page's screenshot and content",
	Long: `Renders a single page with the configured backend and saves the full-page
screenshot next to the page content. No vision model is called.

Content is saved as cleaned HTML or converted to Markdown.`,
	Example: `  # Save screenshot and HTML into ./captures
  vision-researcher capture https://example.com

  # Save Markdown instead, into a custom directory
  vision-researcher capture https://example.com --format markdown --output-dir ./out

  # Capture with local Chrome
  vision-researcher capture https://example.com --backend chrome`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureFormat, "format", "f", "html", "Content format: html or markdown")
	captureCmd.Flags().StringVarP(&captureOutputDir, "output-dir", "d", "./captures", "Directory to save captured files")
}

func runCapture(cmd *cobra.Command, args []string) error {
	pageURL := args[0]
	if err := urlutil.ValidateURL(pageURL); err != nil {
		return err
	}
	format := strings.ToLower(captureFormat)
	if format != "html" && format != "markdown" && format != "md" {
		return fmt.Errorf("invalid format: %s (must be html or markdown)", captureFormat)
	}
	cmd.SilenceUsage = true

	a := GetApp()
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	if a.Config.Backend != config.BackendChrome {
		if err := a.Config.RequireSecrets(config.SecretScreenshotOne); err != nil {
			return err
		}
	}

	log.Info().Str("url", pageURL).Str("backend", a.Capturer.Name()).Msg("Capturing page")
	page, err := a.Capturer.Capture(cmd.Context(), pageURL)
	if err != nil {
		return fmt.Errorf("failed to capture page: %w", err)
	}

	shot := page.Screenshot.Data
	if !page.Screenshot.Inline() {
		res, err := a.Fetcher.Fetch(cmd.Context(), page.Screenshot.URL)
		if err != nil {
			return fmt.Errorf("failed to download screenshot: %w", err)
		}
		shot = res.Body
	}

	var content, ext string
	if format == "html" {
		content, err = output.CleanHTML(page.HTML, pageURL)
		ext = ".html"
	} else {
		content, err = output.PageMarkdown(page.HTML, pageURL)
		ext = ".md"
	}
	if err != nil {
		return fmt.Errorf("failed to convert page content: %w", err)
	}

	dir, err := filepath.Abs(captureOutputDir)
	if err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(dir, slugify(pageURL))
	if err := os.WriteFile(base+".jpg", shot, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	if err := os.WriteFile(base+ext, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	if a.Config.JSONLog || a.Config.Quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s %s\n", ui.Success("Captured"), ui.ColorWhite+pageURL+ui.ColorReset)
	fmt.Fprintf(out, "  %s %s (%s)\n", ui.ColorDim+"Screenshot:"+ui.ColorReset, base+".jpg", formatBytes(int64(len(shot))))
	fmt.Fprintf(out, "  %s %s (%s)\n", ui.ColorDim+"Content:   "+ui.ColorReset, base+ext, formatBytes(int64(len(content))))
	fmt.Fprintf(out, "  %s %v\n\n", ui.ColorDim+"Duration:  "+ui.ColorReset, page.Duration.Round(time.Millisecond))
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// slugify turns a page URL into a file name stem: host plus path
func slugify(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "page"
	}
	name := u.Hostname() + strings.TrimSuffix(u.Path, "/")
	if u.RawQuery != "" {
		name += "_" + u.RawQuery
	}
	name = strings.Trim(slugUnsafe.ReplaceAllString(name, "_"), "_")
	if len(name) > 120 {
		name = name[:120]
	}
	if name == "" {
		return "page"
	}
	return name
}

// formatBytes formats byte count as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
