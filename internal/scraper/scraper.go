// Package scraper turns per-team web pages into start-probability records.
//
// A scrape fetches every configured team page, extracts one record per
// player node through ordered strategy chains (see NameChain and
// ProbabilityChain), and merges the pages into one table deduplicated by
// (name, team) and ordered by descending probability. A team that fails to
// load or parse is logged, counted in the Report and skipped; the scrape
// itself never fails.
package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/xi-fantasy/internal/metrics"
	"github.com/albapepper/xi-fantasy/internal/provider"
)

// DefaultDelay is the pause between consecutive team fetches.
const DefaultDelay = 200 * time.Millisecond

// Result is a merged scrape table with its report.
type Result struct {
	Records []provider.PlayerRecord `json:"records"`
	Report  Report                  `json:"report"`
}

// Source produces a scrape result for a set of teams. Scraper, Cached and
// the snapshot recorder all implement it and can be stacked.
type Source interface {
	Scrape(ctx context.Context, teams []provider.TeamSource) Result
}

// Options tunes a Scraper.
type Options struct {
	// Delay spaces consecutive fetches. Zero uses DefaultDelay; negative
	// disables spacing.
	Delay time.Duration
	// Workers bounds concurrent fetches. Values below 1 mean 1.
	Workers int
}

// Scraper fetches and extracts team pages. It holds no state between calls.
type Scraper struct {
	fetcher Fetcher
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Scraper. m may be nil.
func New(f Fetcher, opts Options, m *metrics.Metrics, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scraper{fetcher: f, opts: opts, metrics: m, logger: logger}
}

type teamOutcome struct {
	records []provider.PlayerRecord
	report  Report
}

// Scrape fetches every team and returns the merged table. The result is
// independent of worker count: pages are merged in team order before
// deduplication.
func (s *Scraper) Scrape(ctx context.Context, teams []provider.TeamSource) Result {
	start := time.Now()
	limit := rate.Inf
	if s.opts.Delay > 0 {
		limit = rate.Every(s.opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	outcomes := make([]teamOutcome, len(teams))

	workers := s.opts.Workers
	if workers > len(teams) {
		workers = len(teams)
	}

	ch := make(chan int, len(teams))
	for i := range teams {
		ch <- i
	}
	close(ch)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				outcomes[i] = s.scrapeTeam(ctx, limiter, teams[i])
			}
		}()
	}
	wg.Wait()

	var report Report
	var merged []provider.PlayerRecord
	for _, o := range outcomes {
		report.Add(o.report)
		merged = append(merged, o.records...)
	}

	records := provider.Dedupe(merged)
	report.Duplicates = len(merged) - len(records)
	report.Records = len(records)
	provider.SortByProbability(records)

	report.TakenAt = start.UTC()
	report.Duration = time.Since(start)
	s.metrics.Records("duplicate", report.Duplicates)
	s.metrics.ScrapeFinished(report.Duration)

	s.logger.Info("Scrape complete",
		"teams", len(teams),
		"duration", report.Duration.Round(time.Millisecond),
		"summary", report.Summary())

	return Result{Records: records, Report: report}
}

// scrapeTeam isolates a single team: every failure is turned into a report
// entry.
func (s *Scraper) scrapeTeam(ctx context.Context, limiter *rate.Limiter, team provider.TeamSource) teamOutcome {
	var out teamOutcome
	fail := func(stage string, err error) teamOutcome {
		s.logger.Warn("Skipping team", "team", team.Team, "stage", stage, "error", err)
		s.metrics.TeamScraped(false)
		out.report.TeamsFailed++
		out.report.AddErrorf("%s: %s: %v", team.Team, stage, err)
		return out
	}

	if err := limiter.Wait(ctx); err != nil {
		return fail("wait", err)
	}

	body, err := s.fetcher.Fetch(ctx, team.URL)
	if err != nil {
		return fail("fetch", err)
	}

	records, stats, err := ExtractPlayers(team.Team, team.URL, body)
	if err != nil {
		return fail("parse", err)
	}

	s.metrics.TeamScraped(true)
	s.metrics.Records("kept", stats.Kept)
	s.metrics.Records("artifact", stats.Artifacts)
	s.metrics.Records("incomplete", stats.Incomplete)

	out.records = records
	out.report.TeamsOK++
	out.report.Artifacts += stats.Artifacts
	out.report.Incomplete += stats.Incomplete
	if len(records) == 0 {
		out.report.TeamsEmpty++
		s.logger.Warn("No players extracted", "team", team.Team, "candidates", stats.Candidates)
		return out
	}

	s.logger.Debug("Team scraped",
		"team", team.Team,
		"locator", stats.Locator,
		"kept", stats.Kept,
		"artifacts", stats.Artifacts,
		"incomplete", stats.Incomplete)
	return out
}
