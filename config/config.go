// Package config loads runtime settings from the environment and rule
// tables from YAML or TOML files.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/seo-optimizer/auditor/crawler"
	"github.com/seo-optimizer/auditor/history"
	"github.com/seo-optimizer/auditor/logging"
)

// Fetch modes.
const (
	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

// Config holds every setting read from the environment.
type Config struct {
	Port    string
	GinMode string
	DataDir string
	DevMode bool
	Debug   bool

	FetchTimeout  time.Duration
	FetchMode     string
	ChromeBin     string
	UserAgent     string
	RespectRobots bool
	MaxBodyBytes  int64

	CacheTTL  time.Duration
	CacheSize int
	RulesFile string

	HistoryBackend string
	MongoURI       string
	MongoDatabase  string
	PostgresDSN    string

	RateLimitRPS   float64
	RateLimitBurst float64

	SiteMaxPages    int
	SiteMaxDepth    int
	SiteConcurrency int
}

// LoadEnv reads .env.development, falling back to .env. Variables already
// set in the environment win.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("[config] No .env file found, using environment variables")
		}
	}
}

// Load reads the environment (after LoadEnv) and validates the result.
func Load() (*Config, error) {
	LoadEnv()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8082"),
		GinMode: getEnv("GIN_MODE", "release"),
		DataDir: getEnv("DATA_DIR", "./data"),
		DevMode: getEnvBool("DEV_MODE", false),
		Debug:   getEnvBool("LOG_DEBUG", false),

		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", crawler.DefaultTimeout),
		FetchMode:     strings.ToLower(getEnv("FETCH_MODE", FetchHTTP)),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		UserAgent:     getEnv("USER_AGENT", crawler.DefaultUserAgent),
		RespectRobots: getEnvBool("RESPECT_ROBOTS", false),
		MaxBodyBytes:  int64(getEnvInt("MAX_BODY_BYTES", crawler.DefaultMaxBodyBytes)),

		CacheTTL:  getEnvDuration("AUDIT_CACHE_TTL", 30*time.Minute),
		CacheSize: getEnvInt("AUDIT_CACHE_SIZE", 1000),
		RulesFile: getEnv("RULES_FILE", ""),

		HistoryBackend: strings.ToLower(getEnv("HISTORY_BACKEND", history.BackendMemory)),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DATABASE", "seo_auditor"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvFloat("RATE_LIMIT_BURST", 5),

		SiteMaxPages:    getEnvInt("SITE_MAX_PAGES", 20),
		SiteMaxDepth:    getEnvInt("SITE_MAX_DEPTH", 2),
		SiteConcurrency: getEnvInt("SITE_CONCURRENCY", 4),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.FetchTimeout <= 0:
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	case c.FetchMode != FetchHTTP && c.FetchMode != FetchBrowser:
		return fmt.Errorf("FETCH_MODE must be %q or %q, got %q", FetchHTTP, FetchBrowser, c.FetchMode)
	case c.CacheTTL < 0:
		return fmt.Errorf("AUDIT_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	case c.RateLimitRPS <= 0 || c.RateLimitBurst < 1:
		return fmt.Errorf("rate limit %v/s burst %v is invalid", c.RateLimitRPS, c.RateLimitBurst)
	case c.SiteMaxPages < 1 || c.SiteMaxDepth < 0 || c.SiteConcurrency < 1:
		return fmt.Errorf("site crawl limits must be positive")
	}
	switch c.HistoryBackend {
	case history.BackendMemory, history.BackendNone:
	case history.BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("HISTORY_BACKEND=mongo requires MONGO_URI")
		}
	case history.BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("HISTORY_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}
	return nil
}

// History returns the history backend settings.
func (c *Config) History() history.Settings {
	return history.Settings{
		Backend:       c.HistoryBackend,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		PostgresDSN:   c.PostgresDSN,
	}
}

// FetchOptions returns the HTTP fetcher settings.
func (c *Config) FetchOptions() crawler.FetchOptions {
	return crawler.FetchOptions{
		UserAgent:    c.UserAgent,
		Timeout:      c.FetchTimeout,
		MaxBodyBytes: c.MaxBodyBytes,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
		log.Printf("[config] %s=%q is not an integer, using %d", key, val, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
		log.Printf("[config] %s=%q is not a number, using %v", key, val, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
		log.Printf("[config] %s=%q is not a boolean, using %t", key, val, fallback)
	}
	return fallback
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("[config] %s=%q is not a duration, using %s", key, val, fallback)
	return fallback
}

// NewFetcher builds the page fetcher selected by FETCH_MODE. logger receives
// robots.txt load failures and may be nil.
func (c *Config) NewFetcher(logger *logging.Logger) crawler.Fetcher {
	if c.FetchMode == FetchBrowser {
		return crawler.NewBrowserFetcher(c.ChromeBin, c.UserAgent, c.FetchTimeout)
	}
	opts := c.FetchOptions()
	if c.RespectRobots {
		opts.Robots = crawler.NewRobotsPolicy(nil, 0, logger)
	}
	return crawler.NewHTTPFetcher(nil, opts)
}
