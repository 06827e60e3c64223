// cmd/server/main.go
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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/chroma/internal/api/palettes"
	"github.com/codr1/chroma/internal/api/themes"
	"github.com/codr1/chroma/internal/app"
	"github.com/codr1/chroma/internal/config"
	"github.com/codr1/chroma/internal/ratelimit"
	"github.com/codr1/chroma/internal/scheduler"
)

const defaultConfigPath = "config.yaml"

func configPath() string {
	if path := os.Getenv("CHROMA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Features.EnableDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.With().Str("app", cfg.App.Name).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	application, err := app.Open(ctx, cfg, app.Options{WithAI: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	limiter := ratelimit.New(&ratelimit.Config{
		MaxPerWindow: cfg.RateLimit.ExtractionsPerMinute,
		Window:       time.Minute,
	})
	defer limiter.Close()

	palettes.InitHandlers(application.Controller, limiter, palettes.Options{
		TrustProxy:     cfg.RateLimit.TrustProxy,
		MaxUploadBytes: cfg.App.MaxUploadBytes,
	})
	themes.InitHandlers(application.Controller)

	if cfg.Backup.Enabled {
		if err := startBackups(cfg, application); err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}()
	}

	server := newServer(cfg)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func startBackups(cfg *config.Config, application *app.App) error {
	if err := scheduler.Init(); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	job := scheduler.BackupJob{Source: application.Store, Dir: cfg.Backup.Dir}
	if err := scheduler.RegisterBackupJob(job, cfg.Backup.Schedule); err != nil {
		return err
	}
	return scheduler.Start()
}
