// Package vision answers a prompt about an arbitrarily tall screenshot by
// splitting it into bands the vision service accepts and joining the answers.
package vision

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/law-makers/vision-researcher/internal/fetcher"
	"github.com/law-makers/vision-researcher/internal/reqctx"
	"github.com/law-makers/vision-researcher/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// Client answers a prompt about a single JPEG image
type Client interface {
	Describe(ctx context.Context, prompt string, jpegData []byte) (string, error)
}

// Downloader retrieves the bytes behind a screenshot reference
type Downloader interface {
	Fetch(ctx context.Context, url string) (*fetcher.Result, error)
}

// ProgressFunc is called after each band is processed, answered or not
type ProgressFunc func(done, total int)

// Options configures an Analyzer
type Options struct {
	BandHeight  int
	JPEGQuality int
	Logger      *zerolog.Logger
}

// Analyzer implements engine.Analyzer with band-by-band vision requests
type Analyzer struct {
	downloader Downloader
	client     Client
	bandHeight int
	quality    int
	logger     zerolog.Logger
	progress   ProgressFunc
}

// New creates an Analyzer
func New(d Downloader, c Client, opts Options) *Analyzer {
	if opts.BandHeight <= 0 {
		opts.BandHeight = DefaultBandHeight
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = jpeg.DefaultQuality
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Analyzer{
		downloader: d,
		client:     c,
		bandHeight: opts.BandHeight,
		quality:    opts.JPEGQuality,
		logger:     logger,
	}
}

// SetProgress installs a per-band progress callback. Pass nil to remove it.
func (a *Analyzer) SetProgress(fn ProgressFunc) {
	a.progress = fn
}

// Analyze splits the screenshot into bands, asks the vision service about each
// one with the unmodified prompt, and joins the non-empty answers in band order.
//
// A band whose request fails or returns no text is left out. The call fails
// with ErrCodeDownloadFailed when the image cannot be obtained or decoded and
// with ErrCodeNoAnalysis when no band produced an answer.
func (a *Analyzer) Analyze(ctx context.Context, shot *models.Screenshot, prompt string) (*models.Report, error) {
	start := time.Now()
	logger := reqctx.Logger(ctx, a.logger)

	data, err := a.load(ctx, shot)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, engine.NewError(engine.ErrCodeDownloadFailed, "failed to decode screenshot", err)
	}

	bounds := img.Bounds()
	bands := Bands(bounds.Dy(), a.bandHeight)
	report := &models.Report{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		BandCount: len(bands),
	}

	logger.Info().
		Str("format", format).
		Int("width", report.Width).
		Int("height", report.Height).
		Int("bands", len(bands)).
		Msg("Analyzing screenshot")

	texts := make([]string, 0, len(bands))
	for _, band := range bands {
		if ctx.Err() != nil {
			break
		}

		if text := a.describeBand(ctx, img, band, prompt); text != "" {
			report.Answers = append(report.Answers, models.BandAnswer{Band: band, Text: text})
			texts = append(texts, text)
		}

		if a.progress != nil {
			a.progress(band.Index+1, len(bands))
		}
	}

	report.Text = strings.Join(texts, "\n")
	report.Duration = time.Since(start)

	if len(texts) == 0 {
		return report, engine.NewError(engine.ErrCodeNoAnalysis, "no band produced an answer", ctx.Err()).
			WithDetail("bands", len(bands))
	}

	logger.Info().
		Int("answered", len(texts)).
		Int("bands", len(bands)).
		Dur("duration", report.Duration).
		Msg("Analysis completed")

	return report, nil
}

// describeBand returns the trimmed answer for one band, or "" on any failure
func (a *Analyzer) describeBand(ctx context.Context, img image.Image, band models.Band, prompt string) string {
	logger := reqctx.Logger(ctx, a.logger)

	tile, err := encodeBand(img, band, a.quality)
	if err != nil {
		logger.Warn().Err(err).Int("band", band.Index).Msg("Skipping band")
		return ""
	}

	logger.Debug().
		Int("band", band.Index).
		Int("top", band.Top).
		Int("bottom", band.Bottom).
		Int("bytes", len(tile)).
		Msg("Describing band")

	answer, err := a.client.Describe(ctx, prompt, tile)
	if err != nil {
		logger.Warn().Err(err).Int("band", band.Index).Msg("Vision request failed, band left out")
		return ""
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		logger.Debug().Int("band", band.Index).Msg("Vision service returned no content")
	}
	return answer
}

func (a *Analyzer) load(ctx context.Context, shot *models.Screenshot) ([]byte, error) {
	if shot == nil {
		return nil, engine.NewError(engine.ErrCodeDownloadFailed, "no screenshot", nil)
	}
	if shot.Inline() {
		return shot.Data, nil
	}
	if shot.URL == "" {
		return nil, engine.NewError(engine.ErrCodeDownloadFailed, "screenshot has neither data nor URL", nil)
	}

	logger := reqctx.Logger(ctx, a.logger)
	logger.Debug().Str("screenshot", shot.URL).Msg("Downloading screenshot")
	result, err := a.downloader.Fetch(ctx, shot.URL)
	if err != nil {
		return nil, engine.NewError(engine.ErrCodeDownloadFailed, "failed to download screenshot", err).
			WithDetail("url", shot.URL)
	}
	if len(result.Body) == 0 {
		return nil, engine.NewError(engine.ErrCodeDownloadFailed, "screenshot download was empty", nil).
			WithDetail("url", shot.URL)
	}
	return result.Body, nil
}
