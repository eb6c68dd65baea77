// Command xi is the XI Fantasy command-line tool.
//
// Usage:
//
//	xi scrape --team "Real Madrid" --json
//	xi match --roster roster.yaml --cutoff 0.7
//	xi match --paste squad.txt
//	xi lineup --roster roster.yaml --min-def 4 --max-def 4
//	xi snapshot latest
//	xi snapshot prune --keep 10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/xi-fantasy/internal/cache"
	"github.com/albapepper/xi-fantasy/internal/config"
	"github.com/albapepper/xi-fantasy/internal/db"
	"github.com/albapepper/xi-fantasy/internal/lineup"
	"github.com/albapepper/xi-fantasy/internal/maintenance"
	"github.com/albapepper/xi-fantasy/internal/provider"
	"github.com/albapepper/xi-fantasy/internal/roster"
	"github.com/albapepper/xi-fantasy/internal/scraper"
	"github.com/albapepper/xi-fantasy/internal/snapshot"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "xi",
		Short:         "Start-probability scraper and fantasy lineup picker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(teamsCmd())
	root.AddCommand(scrapeCmd())
	root.AddCommand(matchCmd())
	root.AddCommand(lineupCmd())
	root.AddCommand(snapshotCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// teams command
// --------------------------------------------------------------------------

func teamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List the configured team pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TEAM\tURL")
			for _, t := range cfg.Teams {
				fmt.Fprintf(tw, "%s\t%s\n", t.Team, t.URL)
			}
			return tw.Flush()
		},
	}
}

// --------------------------------------------------------------------------
// scrape command
// --------------------------------------------------------------------------

func scrapeCmd() *cobra.Command {
	var (
		teamNames []string
		asJSON    bool
		persist   bool
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape start probabilities and print the merged table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(persist, func(ctx context.Context, env *env) error {
				teams, err := selectTeams(env.cfg, teamNames)
				if err != nil {
					return err
				}
				res := env.source.Scrape(ctx, teams)
				logger.Info("Scrape finished",
					"duration", res.Report.Duration.Round(time.Millisecond),
					"summary", res.Report.Summary())
				for _, e := range res.Report.Errors {
					logger.Error("scrape error", "error", e)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				return writeRecords(cmd.OutOrStdout(), res.Records)
			})
		},
	}
	cmd.Flags().StringSliceVar(&teamNames, "team", nil, "Team display name (repeatable); empty = all configured teams")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&persist, "persist", false, "Save the result as a snapshot (requires DATABASE_URL)")
	return cmd
}

// --------------------------------------------------------------------------
// match command
// --------------------------------------------------------------------------

func matchCmd() *cobra.Command {
	var (
		rosterPath string
		pastePath  string
		cutoff     float64
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match roster names against scraped player names",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadRoster(rosterPath, pastePath)
			if err != nil {
				return err
			}
			return run(false, func(ctx context.Context, env *env) error {
				res, suggestions, err := reconcile(ctx, env, entries, cutoffOr(cmd, cutoff, env.cfg.MatchCutoff))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
						"matched":     res.Matched,
						"unmatched":   res.Unmatched,
						"suggestions": suggestions,
						"considered":  res.Considered,
						"skipped":     res.Skipped,
					})
				}
				return writeMatch(cmd.OutOrStdout(), res, suggestions)
			})
		},
	}
	rosterFlags(cmd, &rosterPath, &pastePath)
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0.6, "Minimum similarity score (0..1)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

// --------------------------------------------------------------------------
// lineup command
// --------------------------------------------------------------------------

func lineupCmd() *cobra.Command {
	var (
		rosterPath string
		pastePath  string
		cutoff     float64
		asJSON     bool
		policy     = lineup.DefaultPolicy()
	)
	cmd := &cobra.Command{
		Use:   "lineup",
		Short: "Select the starting lineup with the highest start probabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := policy.Validate(); err != nil {
				return err
			}
			entries, err := loadRoster(rosterPath, pastePath)
			if err != nil {
				return err
			}
			return run(false, func(ctx context.Context, env *env) error {
				res, suggestions, err := reconcile(ctx, env, entries, cutoffOr(cmd, cutoff, env.cfg.MatchCutoff))
				if err != nil {
					return err
				}
				for _, u := range res.Unmatched {
					if s, ok := suggestions[u]; ok {
						logger.Warn("Roster name not found", "name", u, "did_you_mean", s)
					} else {
						logger.Warn("Roster name not found", "name", u)
					}
				}

				l, err := lineup.Pick(res.Matched, policy)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), l)
				}
				return writeLineup(cmd.OutOrStdout(), l)
			})
		},
	}
	rosterFlags(cmd, &rosterPath, &pastePath)
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0.6, "Minimum similarity score (0..1)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the lineup as JSON")
	cmd.Flags().IntVar(&policy.GK, "gk", policy.GK, "Goalkeepers")
	cmd.Flags().IntVar(&policy.DEF.Min, "min-def", policy.DEF.Min, "Minimum defenders")
	cmd.Flags().IntVar(&policy.DEF.Max, "max-def", policy.DEF.Max, "Maximum defenders")
	cmd.Flags().IntVar(&policy.MID.Min, "min-mid", policy.MID.Min, "Minimum midfielders")
	cmd.Flags().IntVar(&policy.MID.Max, "max-mid", policy.MID.Max, "Maximum midfielders")
	cmd.Flags().IntVar(&policy.FWD.Min, "min-fwd", policy.FWD.Min, "Minimum forwards")
	cmd.Flags().IntVar(&policy.FWD.Max, "max-fwd", policy.FWD.Max, "Maximum forwards")
	cmd.Flags().IntVar(&policy.Total, "total", policy.Total, "Lineup size")
	return cmd
}

// --------------------------------------------------------------------------
// snapshot command
// --------------------------------------------------------------------------

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored scrape snapshots",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the snapshot schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				// db.New already migrated.
				logger.Info("Schema up to date")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "latest",
		Short: "Print the most recent snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				res, err := snapshot.NewPGStore(pool.Pool, logger).Latest(ctx)
				if err != nil {
					return err
				}
				logger.Info("Latest snapshot",
					"id", res.Report.SnapshotID,
					"taken_at", res.Report.TakenAt,
					"records", len(res.Records))
				return writeRecords(cmd.OutOrStdout(), res.Records)
			})
		},
	})

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if !cmd.Flags().Changed("keep") {
					keep = cfg.SnapshotRetention
				}
				_, err := maintenance.PruneSnapshots(ctx, snapshot.NewPGStore(pool.Pool, logger), keep, logger)
				return err
			})
		},
	}
	prune.Flags().IntVar(&keep, "keep", 20, "Snapshots to keep (default SNAPSHOT_RETENTION)")
	cmd.AddCommand(prune)
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type env struct {
	cfg    *config.Config
	source scraper.Source
}

// run loads config and builds the scrape source: a live scraper, wrapped in
// the redis cache when REDIS_ADDRESS is set and in a snapshot recorder when
// persist is requested.
func run(persist bool, fn func(ctx context.Context, env *env) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	fetcher := scraper.NewHTTPFetcher(cfg.ScrapeTimeout, cfg.ScrapeUA, logger)
	var source scraper.Source = scraper.New(fetcher, scraper.Options{
		Delay:   cfg.ScrapeDelay,
		Workers: cfg.ScrapeWorkers,
	}, nil, logger)

	if persist {
		if !cfg.HasDatabase() {
			return errors.New("--persist requires DATABASE_URL")
		}
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		source = snapshot.NewRecorder(source, snapshot.NewPGStore(pool.Pool, logger), true, logger)
	}

	if cfg.RedisAddress != "" && !persist {
		rc, err := cache.NewRedis(cache.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("Redis unavailable, scraping without cache", "error", err)
		} else {
			defer rc.Close()
			source = scraper.NewCached(source, rc, cfg.CacheTTL, nil, logger)
		}
	}

	return fn(ctx, &env{cfg: cfg, source: source})
}

// runDB handles config loading, DB connection, and context cancellation.
func runDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return errors.New("DATABASE_URL is required")
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

func selectTeams(cfg *config.Config, names []string) ([]provider.TeamSource, error) {
	if len(names) == 0 {
		return cfg.Teams, nil
	}
	teams := make([]provider.TeamSource, 0, len(names))
	for _, n := range names {
		t, ok := cfg.FindTeam(n)
		if !ok {
			return nil, fmt.Errorf("unknown team %q", n)
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// cutoffOr prefers an explicit --cutoff over the configured MATCH_CUTOFF.
func cutoffOr(cmd *cobra.Command, flag, configured float64) float64 {
	if cmd.Flags().Changed("cutoff") {
		return flag
	}
	return configured
}

func rosterFlags(cmd *cobra.Command, rosterPath, pastePath *string) {
	cmd.Flags().StringVar(rosterPath, "roster", "", "Roster file (YAML or JSON list of {name, position, price})")
	cmd.Flags().StringVar(pastePath, "paste", "", "Plain-text roster, one \"name, position[, price]\" per line")
	cmd.MarkFlagsOneRequired("roster", "paste")
	cmd.MarkFlagsMutuallyExclusive("roster", "paste")
}

func loadRoster(rosterPath, pastePath string) ([]roster.Entry, error) {
	if pastePath != "" {
		return roster.ParsePasteFile(pastePath)
	}
	return roster.LoadFile(rosterPath)
}

func reconcile(ctx context.Context, env *env, entries []roster.Entry, cutoff float64) (roster.Result, map[string]string, error) {
	if cutoff < 0 || cutoff > 1 {
		return roster.Result{}, nil, fmt.Errorf("cutoff must be within [0, 1], got %v", cutoff)
	}
	scraped := env.source.Scrape(ctx, env.cfg.Teams)
	if len(scraped.Records) == 0 {
		return roster.Result{}, nil, fmt.Errorf("no start probabilities available: %s", scraped.Report.Summary())
	}
	if scraped.Report.Stale {
		logger.Warn("Using stored snapshot", "snapshot", scraped.Report.SnapshotID, "taken_at", scraped.Report.TakenAt)
	}
	res := roster.Reconcile(entries, scraped.Records, cutoff)
	return res, roster.Suggestions(res.Unmatched, scraped.Records, env.cfg.SuggestCutoff), nil
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecords(w io.Writer, records []provider.PlayerRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROB\tPLAYER\tTEAM")
	for _, r := range records {
		fmt.Fprintf(tw, "%.0f%%\t%s\t%s\n", r.StartProbability, r.Name, r.Team)
	}
	return tw.Flush()
}

func writeMatch(w io.Writer, res roster.Result, suggestions map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROSTER\tMATCHED\tPOS\tTEAM\tPROB\tSCORE")
	for _, m := range res.Matched {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%.2f\n",
			m.UserName, m.MatchedName, m.Position, m.Team, m.StartProbability, m.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	unmatched := append([]string(nil), res.Unmatched...)
	sort.Strings(unmatched)
	for _, u := range unmatched {
		if s, ok := suggestions[u]; ok {
			fmt.Fprintf(w, "unmatched: %s (did you mean %s?)\n", u, s)
		} else {
			fmt.Fprintf(w, "unmatched: %s\n", u)
		}
	}
	fmt.Fprintf(w, "%d matched, %d unmatched, %d skipped\n", len(res.Matched), len(res.Unmatched), res.Skipped)
	return nil
}

func writeLineup(w io.Writer, l lineup.Lineup) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tPLAYER\tTEAM\tPROB")
	for _, s := range l.Starters {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f%%\n", s.Position, s.MatchedName, s.Team, s.StartProbability)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "formation %s, average start probability %.1f%%\n", l.Formation, l.AverageProbability)
	if len(l.Bench) > 0 {
		fmt.Fprint(w, "bench:")
		for _, b := range l.Bench {
			fmt.Fprintf(w, " %s (%s, %.0f%%)", b.MatchedName, b.Position, b.StartProbability)
		}
		fmt.Fprintln(w)
	}
	return nil
}
