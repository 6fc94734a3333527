// Command storefront serves the storefront core over HTTP.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/storefront/internal/config"
	"github.com/and161185/storefront/internal/migrate"
	"github.com/and161185/storefront/internal/repository"
	"github.com/and161185/storefront/internal/repository/memory"
	"github.com/and161185/storefront/internal/repository/postgres"
	"github.com/and161185/storefront/internal/repository/redis"
	"github.com/and161185/storefront/internal/repository/sqlite"
	"github.com/and161185/storefront/internal/server/httpserver"
	"github.com/and161185/storefront/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens storage and serves HTTP until signalled.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	signKey := []byte(cfg.JWTKey)
	if len(signKey) == 0 {
		signKey = devKey()
		logger.Warn("no jwt key configured, using a random dev key; tokens will not survive restart")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeStore()

	shop := service.NewStorefront(ctx, store, service.DefaultCatalog(), logger)
	app := httpserver.New(shop, httpserver.NewTokens(signKey, cfg.AccessTTL), logger.Named("http"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			closeStore()
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func devKey() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return []byte(hex.EncodeToString(b))
}

// openStore selects the persistence backend and runs migrations where the backend needs them.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.Store, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, noop, err
		}
		if err := migrate.Up(ctx, db, migrate.DialectSQLite); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("migrate up: %w", err)
		}
		return sqlite.NewStore(db), func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		if err := migrate.UpPostgres(ctx, cfg.Storage.DSN); err != nil {
			return nil, noop, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewKVStore(db), db.Close, nil

	case config.DriverRedis:
		rdb, err := redis.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, noop, err
		}
		return redis.NewStore(rdb, cfg.Storage.Prefix), func() { _ = rdb.Close() }, nil

	default:
		log.Warn("memory storage: accounts, session and stock are lost on exit")
		return memory.NewStore(), noop, nil
	}
}
