package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// TimestampFormat is the log timestamp layout, sortable and to the millisecond.
const TimestampFormat = "2006-01-02T15:04:05.999Z07:00"

// Dialect selects which flavour of the registration API the server exposes.
type Dialect string

const (
	DialectUser  Dialect = "user"
	DialectAdmin Dialect = "admin"
)

// Config holds everything read from the environment at startup.
type Config struct {
	BaseURL      string        `env:"TEEDY_URL"`
	AuthToken    string        `env:"TEEDY_AUTH_TOKEN"`
	TokenFile    string        `env:"TEEDY_AUTH_TOKEN_FILE"`
	IdentityPath string        `env:"TEEDY_IDENTITY_PATH"`
	Dialect      Dialect       `env:"TEEDY_API_DIALECT" envDefault:"user"`
	Locale       string        `env:"TEEDY_LOCALE" envDefault:"en-US"`
	Timeout      time.Duration `env:"TEEDY_TIMEOUT" envDefault:"10s"`
	ReadRetries  int           `env:"TEEDY_READ_RETRIES" envDefault:"0"`
	RateLimit    float64       `env:"TEEDY_RATE_LIMIT" envDefault:"5"`
	LogFile      string        `env:"TEEDY_LOG_FILE"`
	LogLevel     string        `env:"TEEDY_LOG_LEVEL" envDefault:"info"`
	DemoMode     bool          `env:"TEEDY_DEMO_MODE"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "parse env")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Dialect != DialectUser && cfg.Dialect != DialectAdmin {
		return Config{}, eris.Errorf("TEEDY_API_DIALECT must be %q or %q, got %q", DialectUser, DialectAdmin, cfg.Dialect)
	}
	if cfg.ReadRetries < 0 {
		return Config{}, eris.New("TEEDY_READ_RETRIES must not be negative")
	}
	if cfg.RateLimit <= 0 {
		return Config{}, eris.New("TEEDY_RATE_LIMIT must be positive")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, eris.Wrap(err, "TEEDY_LOG_LEVEL")
	}
	return cfg, nil
}

// NeedsURL reports whether the server URL still has to be prompted for.
func (c Config) NeedsURL() bool {
	return c.BaseURL == ""
}

// NeedsToken reports whether no token source is configured at all.
func (c Config) NeedsToken() bool {
	return c.AuthToken == "" && c.TokenFile == ""
}

// OpenLogger returns a logger writing to LogFile, or discarding output when
// no file is configured. The returned closer must be called on exit.
func (c Config) OpenLogger() (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.LogFile == "" {
		logger.SetOutput(io.Discard)
		return logger, io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "open log file %s", c.LogFile)
	}
	logger.SetOutput(f)
	return logger, f, nil
}
