// internal/config/config.go
//
// Process configuration.
// Responsibilities:
//   - Load an optional .env file (godotenv) and parse the environment into Config.
//   - Apply defaults through struct tags.
//   - Validate enumerations, the daily timezone and the roster locale.
//
// Everything else receives plain values from Config; nothing below main reads
// the environment directly.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/robalobadob/capsle/internal/roster"
)

// Roster sources.
const (
	SourceAPI    = "api"
	SourceStatic = "static"
)

// Config is the full set of environment-driven settings.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT"    envDefault:"json"`
	AppEnv       string `env:"APP_ENV"       envDefault:"development"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	DBPath     string `env:"DB_PATH"              envDefault:"./data/app.db"`
	ResultsURL string `env:"RESULTS_DATABASE_URL"`

	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"capsle_token"`

	RosterSource      string        `env:"ROSTER_SOURCE"       envDefault:"api"`
	RosterAPIURL      string        `env:"ROSTER_API_URL"      envDefault:"https://dragonball-api.com/api"`
	RosterLimit       int           `env:"ROSTER_LIMIT"        envDefault:"58"`
	RosterHTTPTimeout time.Duration `env:"ROSTER_HTTP_TIMEOUT" envDefault:"0s"`
	RosterFile        string        `env:"ROSTER_FILE"`
	RosterSchemaFile  string        `env:"ROSTER_SCHEMA_FILE"`
	RosterLocale      string        `env:"ROSTER_LOCALE"       envDefault:"es"`

	DailyStrategy string `env:"DAILY_STRATEGY" envDefault:"position"`
	DailySalt     string `env:"DAILY_SALT"     envDefault:"local_dev_salt"`
	DailyTimezone string `env:"DAILY_TIMEZONE" envDefault:"UTC"`

	location *time.Location
	locale   language.Tag
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.RosterSource = strings.ToLower(strings.TrimSpace(c.RosterSource))
	switch c.RosterSource {
	case SourceAPI, SourceStatic:
	default:
		return fmt.Errorf("ROSTER_SOURCE must be %q or %q, got %q", SourceAPI, SourceStatic, c.RosterSource)
	}

	c.DailyStrategy = strings.ToLower(strings.TrimSpace(c.DailyStrategy))
	switch c.DailyStrategy {
	case "position", "pinned":
	default:
		return fmt.Errorf("DAILY_STRATEGY must be \"position\" or \"pinned\", got %q", c.DailyStrategy)
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", c.LogFormat)
	}

	if c.RosterLimit <= 0 {
		return fmt.Errorf("ROSTER_LIMIT must be positive, got %d", c.RosterLimit)
	}
	if c.RosterHTTPTimeout < 0 {
		return fmt.Errorf("ROSTER_HTTP_TIMEOUT must not be negative, got %s", c.RosterHTTPTimeout)
	}
	if c.JWTExpiresDays <= 0 {
		return fmt.Errorf("JWT_EXPIRES_DAYS must be positive, got %d", c.JWTExpiresDays)
	}

	loc, err := time.LoadLocation(c.DailyTimezone)
	if err != nil {
		return fmt.Errorf("DAILY_TIMEZONE: %w", err)
	}
	c.location = loc

	tag, err := roster.ParseLocale(c.RosterLocale)
	if err != nil {
		return fmt.Errorf("ROSTER_LOCALE: %w", err)
	}
	c.locale = tag
	return nil
}

// Location is the timezone that decides when the daily answer rolls over.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Locale is the language attribute values are resolved to.
func (c Config) Locale() language.Tag {
	if c.locale == language.Und {
		return roster.DefaultLocale
	}
	return c.locale
}

// Production reports whether cookies should be marked Secure.
func (c Config) Production() bool { return c.AppEnv == "production" }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }
