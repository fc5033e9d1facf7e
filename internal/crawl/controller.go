// Package crawl drives an audit session: capture a page, analyze its
// screenshot, pick the next same-site link, until the page budget runs out.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/law-makers/vision-researcher/internal/fetcher"
	"github.com/law-makers/vision-researcher/internal/reqctx"
	"github.com/law-makers/vision-researcher/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PageHook is called once per page, processed or skipped. report is nil when
// the page was skipped or analysis produced nothing.
type PageHook func(result models.PageResult, report *models.Report)

// Options configures a Controller
type Options struct {
	Logger *zerolog.Logger
	OnPage PageHook
}

// Controller runs crawl sessions. It is not safe for concurrent Runs.
type Controller struct {
	capturer  engine.Capturer
	analyzer  engine.Analyzer
	extractor engine.LinkExtractor
	logger    zerolog.Logger
	onPage    PageHook
	now       func() time.Time
}

// New creates a Controller
func New(c engine.Capturer, a engine.Analyzer, x engine.LinkExtractor, opts Options) *Controller {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Controller{
		capturer:  c,
		analyzer:  a,
		extractor: x,
		logger:    logger,
		onPage:    opts.OnPage,
		now:       time.Now,
	}
}

// Run audits at most budget pages starting from seed. Page-level failures are
// logged and recorded in the summary; they never abort the session.
func (c *Controller) Run(ctx context.Context, seed, prompt string, budget int) (*models.Summary, error) {
	if seed == "" {
		return nil, fmt.Errorf("seed URL is required")
	}
	if budget < 1 {
		return nil, fmt.Errorf("page budget must be positive, got %d", budget)
	}

	started := c.now()
	s := newSession(seed)
	summary := &models.Summary{
		SeedURL:   seed,
		Prompt:    prompt,
		Budget:    budget,
		StartedAt: started,
	}

	c.logger.Info().
		Str("seed", seed).
		Int("budget", budget).
		Str("backend", c.capturer.Name()).
		Msg("Starting audit")

	for {
		if ctx.Err() != nil {
			summary.Reason = models.ReasonCancelled
			break
		}
		if !s.canContinue(budget) {
			summary.Reason = models.ReasonNoMoreLinks
			if s.processed >= budget {
				summary.Reason = models.ReasonBudgetExhausted
			}
			break
		}

		result := c.step(ctx, s, prompt)
		summary.Pages = append(summary.Pages, result)
	}

	s.state = StateTerminated
	summary.PagesProcessed = s.processed
	summary.Visited = s.order
	summary.Elapsed = c.now().Sub(started)
	if s.processed > 0 {
		summary.AveragePerPage = summary.Elapsed / time.Duration(s.processed)
	}

	c.logger.Info().
		Int("pages", summary.PagesProcessed).
		Int("visited", len(summary.Visited)).
		Str("reason", string(summary.Reason)).
		Dur("elapsed", summary.Elapsed).
		Dur("average_per_page", summary.AveragePerPage).
		Msg("Audit finished")

	return summary, nil
}

// step processes the page under the cursor and moves the cursor on
func (c *Controller) step(ctx context.Context, s *session, prompt string) models.PageResult {
	pageURL := s.cursor
	ctx = reqctx.WithRequestContext(ctx, pageURL)
	rc := reqctx.GetRequestContext(ctx)
	logger := reqctx.Logger(ctx, c.logger).With().Str("url", pageURL).Logger()

	result := models.PageResult{URL: pageURL, RequestID: rc.RequestID}

	c.transition(s, StateCapturing, logger)
	s.visit(pageURL)

	page, err := c.capturer.Capture(ctx, pageURL)
	if err != nil {
		err = reqctx.NewRequestError(ctx, err)
		result.StatusCode = fetcher.StatusCode(err)
		logger.Error().
			Err(err).
			Str("code", string(engine.CodeOf(err))).
			Int("status", result.StatusCode).
			Msg("Capture failed, skipping page")
		result.Skipped = true
		result.Error = err.Error()
		result.Duration = time.Since(rc.StartTime)

		// fall back to what the previous extraction left over
		s.advance()
		c.notify(result, nil)
		return result
	}
	if page.Screenshot != nil {
		result.Screenshot = page.Screenshot.URL
	}
	result.StatusCode = page.StatusCode

	c.transition(s, StateAnalyzing, logger)

	report, err := c.analyzer.Analyze(ctx, page.Screenshot, prompt)
	if err != nil {
		err = reqctx.NewRequestError(ctx, err)
		logger.Warn().Err(err).Str("code", string(engine.CodeOf(err))).Msg("Analysis failed")
		result.Error = err.Error()
	}
	if report != nil {
		result.Report = report.Text
		result.Bands = report.BandCount
		result.AnsweredBands = len(report.Answers)
	}

	links, err := c.extractor.Extract(page.HTML, pageURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Link extraction failed, continuing with no links")
		links = nil
	}
	result.LinksFound = len(links)
	s.processed++

	c.transition(s, StateSelecting, logger)
	s.selectFrom(links)

	logger.Info().
		Int("processed", s.processed).
		Int("links", len(links)).
		Str("next", s.cursor).
		Msg("Page processed")

	result.Duration = time.Since(rc.StartTime)
	if report != nil && report.Text == "" {
		report = nil
	}
	c.notify(result, report)
	return result
}

func (c *Controller) transition(s *session, to State, logger zerolog.Logger) {
	logger.Trace().Str("from", s.state.String()).Str("to", to.String()).Msg("State change")
	s.state = to
}

func (c *Controller) notify(result models.PageResult, report *models.Report) {
	if c.onPage != nil {
		c.onPage(result, report)
	}
}
