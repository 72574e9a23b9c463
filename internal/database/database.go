// Package database opens the gorm connection pool for the configured backend
// and keeps the schema in place.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"employee-management/internal/models"
)

// Options tunes the connection pool and startup behavior
type Options struct {
	ConnectAttempts int
	ConnectDelay    time.Duration
	MaxOpenConns    int
	Debug           bool
}

// Dialector picks the gorm dialector from the connection string scheme.
// sqlite:///path, sqlite://:memory:, file: URIs and bare paths go to SQLite,
// postgres:// and postgresql:// to PostgreSQL, mysql:// to MySQL with the scheme stripped.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("empty database url")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "mysql://"):
		return mysql.Open(strings.TrimPrefix(databaseURL, "mysql://")), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return sqlite.Open(SQLiteDSN(databaseURL)), nil
	case strings.Contains(databaseURL, "://") && !strings.HasPrefix(databaseURL, "sqlite://"):
		scheme := databaseURL[:strings.Index(databaseURL, "://")]
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	default:
		return sqlite.Open(SQLiteDSN(databaseURL)), nil
	}
}

// SQLiteDSN converts an sqlite url into a go-sqlite3 dsn with foreign keys and busy timeout enabled.
// sqlite:///app.db is relative to the working directory, sqlite:////var/lib/app.db is absolute.
func SQLiteDSN(databaseURL string) string {
	path := databaseURL
	if strings.HasPrefix(path, "sqlite://") {
		path = strings.TrimPrefix(strings.TrimPrefix(path, "sqlite://"), "/")
	}
	if path == "" {
		path = ":memory:"
	}

	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}

func isInMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Open connects to the database and pings it, retrying with backoff when asked to
func Open(ctx context.Context, databaseURL string, opts Options, logger *logrus.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if opts.Debug {
		level = gormlogger.Info
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}

	attempts := max(opts.ConnectAttempts, 1)
	delay := opts.ConnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	rptr := repeater.New(&strategy.Backoff{Repeats: attempts, Duration: delay, Factor: 2, Jitter: true})

	var db *gorm.DB
	attempt := 0
	err = rptr.Do(ctx, func() error {
		attempt++
		conn, openErr := gorm.Open(dialector, gormCfg)
		if openErr != nil {
			logger.WithError(openErr).WithField("attempt", attempt).Warn("Failed to open database")
			return openErr
		}
		sqlDB, dbErr := conn.DB()
		if dbErr != nil {
			return dbErr
		}
		if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
			logger.WithError(pingErr).WithField("attempt", attempt).Warn("Failed to ping database")
			_ = sqlDB.Close()
			return pingErr
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if db.Dialector.Name() == "sqlite" && isInMemory(SQLiteDSN(databaseURL)) {
		// every new connection to :memory: is a separate empty database
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
			sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
		}
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	logger.WithFields(logrus.Fields{
		"dialect":  db.Dialector.Name(),
		"attempts": attempt,
	}).Info("Database connected")
	return db, nil
}

// Migrate creates the tables when they are missing
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Employee{}, &models.LeaveRequest{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Ping checks that the database still answers
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
