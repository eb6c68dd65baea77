// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/xi.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/albapepper/xi-fantasy/internal/provider"
)

// --------------------------------------------------------------------------
// Team registry: the LaLiga team pages scraped by default
// --------------------------------------------------------------------------

const teamPageBase = "https://www.futbolfantasy.com/laliga/equipos/"

// LaLigaTeams is the default scrape target, in display order.
var LaLigaTeams = []provider.TeamSource{
	{Team: "Alavés", URL: teamPageBase + "alaves"},
	{Team: "Athletic Club", URL: teamPageBase + "athletic"},
	{Team: "Atlético de Madrid", URL: teamPageBase + "atletico"},
	{Team: "Barcelona", URL: teamPageBase + "barcelona"},
	{Team: "Betis", URL: teamPageBase + "betis"},
	{Team: "Celta", URL: teamPageBase + "celta"},
	{Team: "Elche", URL: teamPageBase + "elche"},
	{Team: "Espanyol", URL: teamPageBase + "espanyol"},
	{Team: "Getafe", URL: teamPageBase + "getafe"},
	{Team: "Girona", URL: teamPageBase + "girona"},
	{Team: "Levante", URL: teamPageBase + "levante"},
	{Team: "Mallorca", URL: teamPageBase + "mallorca"},
	{Team: "Osasuna", URL: teamPageBase + "osasuna"},
	{Team: "Rayo Vallecano", URL: teamPageBase + "rayo-vallecano"},
	{Team: "Real Madrid", URL: teamPageBase + "real-madrid"},
	{Team: "Real Oviedo", URL: teamPageBase + "real-oviedo"},
	{Team: "Real Sociedad", URL: teamPageBase + "real-sociedad"},
	{Team: "Sevilla", URL: teamPageBase + "sevilla"},
	{Team: "Valencia", URL: teamPageBase + "valencia"},
	{Team: "Villarreal", URL: teamPageBase + "villarreal"},
}

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (optional: snapshots are disabled without it)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    slog.Level

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Scraper
	Teams         []provider.TeamSource
	ScrapeTimeout time.Duration
	ScrapeDelay   time.Duration
	ScrapeWorkers int
	ScrapeUA      string
	RefreshEvery  time.Duration // 0 disables background refresh

	// Matching
	MatchCutoff   float64
	SuggestCutoff float64

	// Cache
	CacheEnabled  bool
	CacheTTL      time.Duration
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Snapshots
	SnapshotAutosave  bool
	SnapshotRetention int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	teams := LaLigaTeams
	if path := envOr("TEAMS_FILE", ""); path != "" {
		t, err := LoadTeams(path)
		if err != nil {
			return nil, err
		}
		teams = t
	}

	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8501",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		Teams:         teams,
		ScrapeTimeout: time.Duration(envInt("SCRAPE_TIMEOUT_SECONDS", 15)) * time.Second,
		ScrapeDelay:   time.Duration(envInt("SCRAPE_DELAY_MS", 200)) * time.Millisecond,
		ScrapeWorkers: envInt("SCRAPE_WORKERS", 1),
		ScrapeUA:      envOr("SCRAPE_USER_AGENT", ""),
		RefreshEvery:  time.Duration(envInt("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,

		MatchCutoff:   envFloat("MATCH_CUTOFF", 0.6),
		SuggestCutoff: envFloat("SUGGEST_CUTOFF", 0.5),

		CacheEnabled:  envBool("CACHE_ENABLED", true),
		CacheTTL:      time.Duration(envInt("CACHE_TTL_MINUTES", 15)) * time.Minute,
		RedisAddress:  envOr("REDIS_ADDRESS", ""),
		RedisPassword: envOr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		SnapshotAutosave:  envBool("SNAPSHOT_AUTOSAVE", true),
		SnapshotRetention: envInt("SNAPSHOT_RETENTION", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.MatchCutoff < 0 || c.MatchCutoff > 1 {
		errs = append(errs, fmt.Errorf("MATCH_CUTOFF must be within [0, 1], got %v", c.MatchCutoff))
	}
	if c.SuggestCutoff < 0 || c.SuggestCutoff > 1 {
		errs = append(errs, fmt.Errorf("SUGGEST_CUTOFF must be within [0, 1], got %v", c.SuggestCutoff))
	}
	if c.ScrapeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SCRAPE_TIMEOUT_SECONDS must be positive"))
	}
	if c.ScrapeWorkers < 1 {
		errs = append(errs, fmt.Errorf("SCRAPE_WORKERS must be at least 1, got %d", c.ScrapeWorkers))
	}
	if len(c.Teams) == 0 {
		errs = append(errs, fmt.Errorf("no teams configured"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether snapshot storage is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// FindTeam looks a configured team up by display name, case-insensitively.
func (c *Config) FindTeam(name string) (provider.TeamSource, bool) {
	for _, t := range c.Teams {
		if strings.EqualFold(t.Team, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return provider.TeamSource{}, false
}

// LoadTeams reads a YAML list of {team, url} entries.
func LoadTeams(path string) ([]provider.TeamSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teams file: %w", err)
	}
	var teams []provider.TeamSource
	if err := yaml.Unmarshal(raw, &teams); err != nil {
		return nil, fmt.Errorf("parse teams file %s: %w", path, err)
	}
	for i, t := range teams {
		if strings.TrimSpace(t.Team) == "" || strings.TrimSpace(t.URL) == "" {
			return nil, fmt.Errorf("teams file %s: entry %d needs both team and url", path, i)
		}
	}
	return teams, nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
