// cmd/server/server.go
package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/codr1/chroma/assets"
	"github.com/codr1/chroma/internal/api"
	"github.com/codr1/chroma/internal/api/palettes"
	"github.com/codr1/chroma/internal/api/themes"
	"github.com/codr1/chroma/internal/config"
)

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// WithMetrics sits innermost so it sees the pattern ServeMux records on the request.
	handler := api.ChainMiddleware(
		router,
		api.WithMetrics,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
		api.WithMaxBodySize(cfg.App.MaxUploadBytes+1<<20),
	)

	registerRoutes(router, cfg)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Extraction waits on the model, so writes may take up to the AI request timeout.
		WriteTimeout: cfg.AI.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	mux.HandleFunc("GET /{$}", palettes.HandleStudioPage)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Features.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Palette studio
	mux.HandleFunc("GET /api/v1/input", palettes.HandleInputTab)
	mux.HandleFunc("POST /api/v1/extract", palettes.HandleExtract)
	mux.HandleFunc("POST /api/v1/palette/discard", palettes.HandleDiscard)
	mux.HandleFunc("POST /api/v1/palette/save", palettes.HandleSaveBegin)
	mux.HandleFunc("POST /api/v1/palette/save/confirm", palettes.HandleSaveConfirm)
	mux.HandleFunc("POST /api/v1/palette/save/cancel", palettes.HandleSaveCancel)

	// Saved themes
	mux.HandleFunc("GET /api/v1/themes", themes.HandleThemesList)
	mux.HandleFunc("DELETE /api/v1/themes/{id}", themes.HandleThemeDelete)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS(cfg.App.StaticDir))))
}

// staticFS serves files from dir when it exists, otherwise the assets compiled into the binary.
func staticFS(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			log.Info().Str("static_dir", dir).Msg("Serving static files from disk")
			return os.DirFS(dir)
		}
		log.Warn().Str("static_dir", dir).Msg("Static directory not found, using embedded assets")
	}
	return assets.StaticFS()
}
