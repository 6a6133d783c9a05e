package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjannette/holdings-tracker/internal/api"
	"github.com/kjannette/holdings-tracker/internal/config"
	"github.com/kjannette/holdings-tracker/internal/db"
	"github.com/kjannette/holdings-tracker/internal/external"
	"github.com/kjannette/holdings-tracker/internal/logger"
	"github.com/kjannette/holdings-tracker/internal/portfolio"
	"github.com/kjannette/holdings-tracker/internal/repository"
)

const banner = `
╔══════════════════════════════════════╗
║        Holdings Tracker v0.1         ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg.Print(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		pool.Close()
		log.Info("database pool closed")
	}()

	serverTime, err := db.TestConnection(ctx, pool)
	if err != nil {
		return fmt.Errorf("test query: %w", err)
	}
	log.Info("database connected", zap.Time("serverTime", serverTime))

	if cfg.AutoMigrate {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("schema ready")
	}

	holdings := repository.NewHoldingRepo(pool)
	quotes := external.NewQuoteClient(external.QuoteOptions{
		BaseURL:     cfg.QuoteBaseURL,
		APIKey:      cfg.QuoteAPIKey,
		Timeout:     cfg.QuoteTimeout(),
		MaxAttempts: cfg.QuoteMaxAttempts,
	}, log)
	valuator := portfolio.NewService(holdings, quotes, cfg.QuoteTimeout(), log)

	srv := api.NewServer(holdings, valuator, pool, api.Options{
		Port:            cfg.Port,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", zap.Int("port", cfg.Port))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	log.Info("shutdown complete")
	return nil
}
