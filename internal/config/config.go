// Load envs from .env
// Load YAML settings
// Provide default values
// Validate settings

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"school-job-scout/internal/filter"
	"school-job-scout/internal/scraper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	//Inputs and outputs
	DistrictsPath string `yaml:"districts_path"`
	StatePath     string `yaml:"state_path"`
	StateBackend  string `yaml:"state_backend"`
	ResultsPath   string `yaml:"results_path"`
	Store         string `yaml:"store"`
	SQLitePath    string `yaml:"sqlite_path"`

	//Fetching
	Renderer      string     `yaml:"renderer"`
	Headless      *bool      `yaml:"headless"`
	Concurrency   int        `yaml:"concurrency"`
	CookiesPath   string     `yaml:"cookies_path"`
	ScreenshotDir string     `yaml:"screenshot_dir"`
	HTTP          HTTPConfig `yaml:"http"`

	//Extraction and classification
	SearchTerms []string        `yaml:"search_terms"`
	Keywords    filter.Keywords `yaml:"keywords"`
	Scan        ScanConfig      `yaml:"scan"`
	Title       TitleConfig     `yaml:"title"`

	Schedule   string `yaml:"schedule"`
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	//Secrets, usually from the environment
	TelegramToken  string      `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64       `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	Email          EmailConfig `yaml:"email"`
	NtfyTopic      string      `yaml:"ntfy_topic" env:"NTFY_TOPIC"`
	DatabaseURL    string      `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL       string      `yaml:"redis_url" env:"REDIS_URL"`

	// Loaded is the settings file actually read, empty when defaults were used.
	Loaded string `yaml:"-"`
}

type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type ScanConfig struct {
	Window    int `yaml:"window"`
	Lookahead int `yaml:"lookahead"`
}

type TitleConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type EmailConfig struct {
	From     string `yaml:"from" env:"EMAIL_FROM"`
	To       string `yaml:"to" env:"EMAIL_TO"`
	Password string `yaml:"password" env:"EMAIL_PASSWORD"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
}

// Enabled reports whether enough is set to send mail.
func (e EmailConfig) Enabled() bool {
	return e.From != "" && e.To != "" && e.Password != ""
}

const (
	RendererPlaywright = "playwright"
	RendererChromedp   = "chromedp"
	RendererNone       = "none"

	StateFile  = "file"
	StateRedis = "redis"

	StoreNone     = ""
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// DefaultUserAgent is a desktop browser string; several portals refuse bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Load reads .env, then the YAML settings at path, then environment overrides.
// A missing settings file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Loaded = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setFromEnv(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	setFromEnv(&c.Email.From, "EMAIL_FROM")
	setFromEnv(&c.Email.To, "EMAIL_TO")
	setFromEnv(&c.Email.Password, "EMAIL_PASSWORD")
	setFromEnv(&c.NtfyTopic, "NTFY_TOPIC")
	setFromEnv(&c.DatabaseURL, "DATABASE_URL")
	setFromEnv(&c.RedisURL, "REDIS_URL")
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.DistrictsPath == "" {
		c.DistrictsPath = "config.json"
	}
	if c.StatePath == "" {
		c.StatePath = ".job_cache.json"
	}
	if c.StateBackend == "" {
		c.StateBackend = StateFile
	}
	if c.ResultsPath == "" {
		c.ResultsPath = "latest_results.json"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "jobs.db"
	}
	if c.Renderer == "" {
		c.Renderer = RendererPlaywright
	}
	if c.Headless == nil {
		headless := true
		c.Headless = &headless
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	if c.Schedule == "" {
		c.Schedule = "0 7 * * *"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.Email.SMTPHost == "" {
		c.Email.SMTPHost = "smtp.gmail.com"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 465
	}
}

// Validate checks enumerated settings and the secrets they depend on.
func (c *Config) Validate() error {
	switch c.Renderer {
	case RendererPlaywright, RendererChromedp, RendererNone:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	switch c.StateBackend {
	case StateFile:
	case StateRedis:
		if c.RedisURL == "" {
			return errors.New("state_backend redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown state_backend %q", c.StateBackend)
	}
	return c.ValidateStore(c.Store)
}

// ValidateStore checks a persistence sink choice, which the CLI can override.
func (c *Config) ValidateStore(store string) error {
	switch store {
	case StoreNone, StoreSQLite:
		return nil
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("store postgres requires DATABASE_URL")
		}
		return nil
	default:
		return fmt.Errorf("unknown store %q", store)
	}
}

// IsHeadless defaults to true.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}

func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		SearchTerms: c.SearchTerms,
		Window:      c.Scan.Window,
		Lookahead:   c.Scan.Lookahead,
		Title:       scraper.Bounds{Min: c.Title.Min, Max: c.Title.Max},
	}.WithDefaults()
}

// ClassifierKeywords merges the configured overrides into the defaults.
func (c *Config) ClassifierKeywords() filter.Keywords {
	return filter.DefaultKeywords().Merge(c.Keywords)
}
