// internal/api/themes/handlers.go
package themes

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/chroma/internal/api/apiutil"
	"github.com/codr1/chroma/internal/api/htmx"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/studio"
	palettetempl "github.com/codr1/chroma/internal/templates/components/palettes"
)

const themeIDParam = "id"

var (
	controller     themeController
	controllerOnce sync.Once
)

type themeController interface {
	State() studio.State
	Delete(ctx context.Context, id string) bool
}

type deleteRequest struct {
	ID string `validate:"required,max=128"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *studio.Controller) {
	if c == nil {
		return
	}
	controllerOnce.Do(func() {
		controller = c
	})
}

// GET /api/v1/themes
func HandleThemesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadController()
	if c == nil {
		logger.Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	state := c.State()
	if htmx.IsRequest(r) {
		renderGallery(w, r, state)
		return
	}

	writeThemes(w, r, http.StatusOK, state.Themes, map[string]any{})
}

// DELETE /api/v1/themes/{id}
func HandleThemeDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadController()
	if c == nil {
		logger.Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req := deleteRequest{ID: strings.TrimSpace(r.PathValue(themeIDParam))}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	deleted := c.Delete(r.Context(), req.ID)
	logger.Info().Str("theme_id", req.ID).Bool("deleted", deleted).Msg("Theme delete requested")

	state := c.State()
	if htmx.IsRequest(r) {
		// The gallery is the swap target; no refresh event.
		renderGallery(w, r, state)
		return
	}

	writeThemes(w, r, http.StatusOK, state.Themes, map[string]any{"deleted": deleted})
}

func renderGallery(w http.ResponseWriter, r *http.Request, state studio.State) {
	component := templ.Join(
		palettetempl.Notice(state.Warning),
		palettetempl.Gallery(palettetempl.NewThemeCards(state.Themes)),
	)
	apiutil.RenderHTMLComponent(r.Context(), w, component, nil, "Failed to render themes list", "Failed to render list")
}

func writeThemes(w http.ResponseWriter, r *http.Request, status int, themes []models.ColorTheme, payload map[string]any) {
	if themes == nil {
		themes = []models.ColorTheme{}
	}
	payload["themes"] = themes
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write themes response")
	}
}

func loadController() themeController {
	return controller
}
