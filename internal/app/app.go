// Package app wires the storage, model client and controller shared by the server and CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/config"
	"github.com/codr1/chroma/internal/db"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/studio"
	"github.com/codr1/chroma/internal/themestore"
)

type App struct {
	Config     *config.Config
	DB         *db.DB
	Store      *themestore.Store
	AI         *ai.Client
	Controller *studio.Controller
}

// Options selects which parts to build. Theme-only commands skip the model client so they
// work without a credential.
type Options struct {
	WithAI bool
}

// Open opens the database, loads saved themes and builds the controller. A theme load
// failure is not fatal: the controller starts with the warning and the sample themes.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := log.Ctx(ctx)

	var client *ai.Client
	if opts.WithAI {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		var err error
		client, err = ai.NewClient(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("create ai client: %w", err)
		}
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := themestore.New(database.Slots(), cfg.Storage.SlotKey)
	loadErr := store.Load(ctx)
	if loadErr != nil && !errors.Is(loadErr, themestore.ErrPersistence) {
		database.Close()
		return nil, fmt.Errorf("load themes: %w", loadErr)
	}

	var extractor studio.Extractor = unavailableAI{}
	var namer studio.Namer = unavailableAI{}
	if client != nil {
		extractor = client
		namer = client
	}

	controller := studio.New(extractor, namer, store)
	if loadErr != nil {
		logger.Warn().Err(loadErr).Str("slot", cfg.Storage.SlotKey).Msg("Saved themes could not be loaded; showing samples")
		controller.SetWarning(themestore.WarningMessage(loadErr))
	}

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("database", cfg.Database.Filename).
		Int("themes", store.Len()).
		Bool("ai", client != nil).
		Msg("Application initialized")

	return &App{
		Config:     cfg,
		DB:         database,
		Store:      store,
		AI:         client,
		Controller: controller,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// unavailableAI stands in when the app was opened without a model client.
type unavailableAI struct{}

var errAIUnavailable = fmt.Errorf("%w: model client not configured", ai.ErrExtraction)

func (unavailableAI) Extract(context.Context, ai.Input) (models.Palette, error) {
	return nil, errAIUnavailable
}

func (unavailableAI) SuggestName(context.Context, models.Palette) (string, error) {
	return "", ai.ErrNaming
}
