package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/umputun/go-flags"
)

// ErrMissingDatabaseURL is returned when no connection string was supplied.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is missing")

type Config struct {
	Listen      string   `long:"listen" env:"LISTEN" default:":8000" description:"http listen address"`
	DatabaseURL string   `long:"database-url" env:"DATABASE_URL" description:"database connection string"`
	CORSOrigins []string `long:"cors-origins" env:"CORS_ORIGINS" env-delim:"," default:"*" description:"allowed CORS origins"`
	RateLimit   float64  `long:"rate-limit" env:"RATE_LIMIT" default:"0" description:"requests per second per client, 0 disables"`
	Debug       bool     `long:"dbg" env:"DEBUG" description:"debug mode"`

	DB struct {
		ConnectAttempts int           `long:"connect-attempts" env:"CONNECT_ATTEMPTS" default:"1" description:"open and ping attempts"`
		ConnectDelay    time.Duration `long:"connect-delay" env:"CONNECT_DELAY" default:"1s" description:"initial delay between attempts"`
		MaxOpenConns    int           `long:"max-open-conns" env:"MAX_OPEN_CONNS" default:"10" description:"max open connections"`
	} `group:"db" namespace:"db" env-namespace:"DB"`

	Log struct {
		File       string `long:"file" env:"FILE" description:"log file, stdout only when empty"`
		MaxSize    int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in MB"`
		MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" default:"5" description:"max rotated files to keep"`
		MaxAge     int    `long:"max-age" env:"MAX_AGE" default:"30" description:"max days to keep rotated files"`
	} `group:"log" namespace:"log" env-namespace:"LOG"`
}

// Load reads an optional .env file, then parses flags with environment fallbacks.
// A missing .env file is not an error, a missing DATABASE_URL is.
func Load(args []string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit can't be negative: %v", c.RateLimit)
	}
	if c.DB.ConnectAttempts < 1 {
		c.DB.ConnectAttempts = 1
	}
	return nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// godotenv never overrides variables already set in the environment
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
