package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"employee-management/internal/config"
	"employee-management/internal/database"
	"employee-management/internal/handler"
	"employee-management/internal/repository"
	"employee-management/internal/server"
	"employee-management/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("Failed to load config")
	}

	logger, closeLogs := setupLogs(cfg)
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("Server failed")
		closeLogs()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// run opens the database, wires the layers and serves until ctx is canceled
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		ConnectAttempts: cfg.DB.ConnectAttempts,
		ConnectDelay:    cfg.DB.ConnectDelay,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		Debug:           cfg.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.WithError(err).Warn("Error closing database")
		}
	}()

	// the server still starts when tables can't be created, requests will fail instead
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Error("Failed to migrate database")
	}

	store := repository.NewGormStore(db, logger)
	h := handler.NewHandler(
		service.NewEmployeeService(store, logger),
		service.NewLeaveService(store, logger),
		func(ctx context.Context) error { return database.Ping(ctx, db) },
		logger,
	)
	router := h.Router(handler.RouterOptions{CORSOrigins: cfg.CORSOrigins, RateLimit: cfg.RateLimit})

	return server.New(cfg.Listen, router, logger).Run(ctx)
}

// setupLogs configures the logger, adding a rotated file next to stdout when LOG_FILE is set
func setupLogs(cfg *config.Config) (*logrus.Logger, func()) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	gin.SetMode(gin.ReleaseMode)
	logger.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
		logger.SetLevel(logrus.DebugLevel)
	}

	if cfg.Log.File == "" {
		logger.SetOutput(os.Stdout)
		return logger, func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return logger, func() { _ = rotator.Close() }
}
