// internal/api/palettes/handlers.go
package palettes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/api/apiutil"
	"github.com/codr1/chroma/internal/api/htmx"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/ratelimit"
	"github.com/codr1/chroma/internal/studio"
	palettetempl "github.com/codr1/chroma/internal/templates/components/palettes"
	"github.com/codr1/chroma/internal/templates/layouts"
)

const (
	pageTitle             = "Chroma"
	defaultMaxUploadBytes = 10 << 20
)

var (
	controller     studioController
	limiter        *ratelimit.Limiter
	options        Options
	controllerOnce sync.Once
)

type studioController interface {
	State() studio.State
	Extract(ctx context.Context, in ai.Input) studio.State
	BeginSave(ctx context.Context) (string, error)
	ConfirmSave(ctx context.Context, name string) (models.ColorTheme, error)
	CancelSave() error
	Discard()
}

type Options struct {
	TrustProxy     bool
	MaxUploadBytes int64
}

type extractRequest struct {
	Kind     string `form:"kind" json:"kind" validate:"required,oneof=css url image"`
	CSS      string `form:"css" json:"css"`
	URL      string `form:"url" json:"url" validate:"max=2048"`
	Image    []byte `form:"-" json:"image"`
	MIMEType string `form:"-" json:"mimeType"`
}

type confirmRequest struct {
	Name string `form:"name" json:"name" validate:"max=500"`
}

type stateResponse struct {
	Phase         studio.Phase `json:"phase"`
	Palette       []string     `json:"palette"`
	Error         string       `json:"error,omitempty"`
	Warning       string       `json:"warning,omitempty"`
	SuggestedName string       `json:"suggestedName,omitempty"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *studio.Controller, l *ratelimit.Limiter, opts Options) {
	if c == nil {
		return
	}
	controllerOnce.Do(func() {
		controller = c
		limiter = l
		options = opts
		if options.MaxUploadBytes <= 0 {
			options.MaxUploadBytes = defaultMaxUploadBytes
		}
	})
}

// GET /
func HandleStudioPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadController()
	if c == nil {
		logger.Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	state := c.State()
	var accent models.Palette
	if len(state.Themes) > 0 {
		accent = state.Themes[0].Colors
	}

	page := layouts.Base(pageTitle, palettetempl.Studio(palettetempl.NewStudioData(state)), accent)
	apiutil.RenderHTMLComponent(r.Context(), w, page, nil, "Failed to render studio page", "Failed to render page")
}

// GET /api/v1/input?tab=css|url|image
func HandleInputTab(w http.ResponseWriter, r *http.Request) {
	kind := ai.KindCSS
	if raw := strings.TrimSpace(r.URL.Query().Get("tab")); raw != "" {
		parsed, err := ai.ParseKind(raw)
		if err != nil {
			http.Error(w, "tab must be one of: css, url, image", http.StatusBadRequest)
			return
		}
		kind = parsed
	}

	if !htmx.IsRequest(r) {
		if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"tab": kind, "tabs": ai.Kinds}); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write input tab response")
		}
		return
	}

	component := palettetempl.InputPanel(palettetempl.NewInputData(kind))
	apiutil.RenderHTMLComponent(r.Context(), w, component, nil, "Failed to render input panel", "Failed to render form")
}

// POST /api/v1/extract
func HandleExtract(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadController()
	if c == nil {
		logger.Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeExtractRequest(r)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	in, err := req.input()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Only input that will reach the model counts against the quota.
	if _, err := in.Validate(); err == nil {
		ip := ratelimit.GetClientIP(r, options.TrustProxy)
		if result := limiter.Allow(ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), ip, result)
			seconds := int(result.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			http.Error(w, "Too many extractions. Please wait a moment and try again.", http.StatusTooManyRequests)
			return
		}
	}

	logger.Info().Str("kind", string(in.Kind)).Msg("Extracting palette")
	state := c.Extract(r.Context(), in)

	if htmx.IsRequest(r) {
		renderResult(w, r, state, nil)
		return
	}

	status := http.StatusOK
	if state.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	writeState(w, r, status, state)
}

// POST /api/v1/palette/discard
func HandleDiscard(w http.ResponseWriter, r *http.Request) {
	c := loadController()
	if c == nil {
		log.Ctx(r.Context()).Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.Discard()
	state := c.State()
	if htmx.IsRequest(r) {
		renderResult(w, r, state, nil)
		return
	}
	writeState(w, r, http.StatusOK, state)
}

// POST /api/v1/palette/save
func HandleSaveBegin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadController()
	if c == nil {
		logger.Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	suggested, err := c.BeginSave(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, studio.ErrNoPalette):
			http.Error(w, "There is no extracted palette to save.", http.StatusConflict)
		case errors.Is(err, studio.ErrBusy):
			http.Error(w, "A save is already in progress.", http.StatusConflict)
		default:
			logger.Error().Err(err).Msg("Failed to start theme save")
			http.Error(w, "Failed to start save", http.StatusInternalServerError)
		}
		return
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, palettetempl.NameDialog(suggested), nil, "Failed to render name dialog", "Failed to render dialog")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]string{"suggestedName": suggested}); err != nil {
		logger.Error().Err(err).Msg("Failed to write save suggestion response")
	}
}

// POST /api/v1/palette/save/confirm
func HandleSaveConfirm(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadController()
	if c == nil {
		logger.Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeConfirmRequest(r)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	theme, err := c.ConfirmSave(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, studio.ErrNotNaming) {
			http.Error(w, "No save is waiting for a name.", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Msg("Failed to save theme")
		state := c.State()
		if htmx.IsRequest(r) {
			renderResult(w, r, state, nil)
			return
		}
		writeState(w, r, http.StatusInternalServerError, state)
		return
	}

	state := c.State()
	if htmx.IsRequest(r) {
		renderResult(w, r, state, []string{htmx.RefreshThemes})
		return
	}

	payload := map[string]any{"theme": theme}
	if state.Warning != "" {
		payload["warning"] = state.Warning
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, payload); err != nil {
		logger.Error().Err(err).Str("theme_id", theme.ID).Msg("Failed to write theme save response")
	}
}

// POST /api/v1/palette/save/cancel
func HandleSaveCancel(w http.ResponseWriter, r *http.Request) {
	c := loadController()
	if c == nil {
		log.Ctx(r.Context()).Error().Msg("Studio controller not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := c.CancelSave(); err != nil {
		http.Error(w, "No save is waiting for a name.", http.StatusConflict)
		return
	}

	state := c.State()
	if htmx.IsRequest(r) {
		renderResult(w, r, state, nil)
		return
	}
	writeState(w, r, http.StatusOK, state)
}

func renderResult(w http.ResponseWriter, r *http.Request, state studio.State, events []string) {
	htmx.Trigger(w, events...)
	component := palettetempl.Result(palettetempl.NewResultData(state))
	apiutil.RenderHTMLComponent(r.Context(), w, component, nil, "Failed to render palette result", "Failed to render result")
}

func writeState(w http.ResponseWriter, r *http.Request, status int, state studio.State) {
	resp := stateResponse{
		Phase:         state.Phase,
		Palette:       state.Palette,
		Error:         state.Error,
		Warning:       state.Warning,
		SuggestedName: state.SuggestedName,
	}
	if resp.Palette == nil {
		resp.Palette = []string{}
	}
	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write palette state response")
	}
}

func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var herr apiutil.HandlerError
	if errors.As(err, &herr) {
		if herr.Status >= http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Err(herr.Err).Msg(herr.Message)
		}
		apiutil.WriteError(w, herr)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func decodeExtractRequest(r *http.Request) (extractRequest, error) {
	var req extractRequest

	if isJSONRequest(r) {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return req, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}
		}
	} else {
		if err := parseForm(r); err != nil {
			return req, err
		}
		req.Kind = r.FormValue("kind")
		req.CSS = r.FormValue("css")
		req.URL = strings.TrimSpace(r.FormValue("url"))

		if strings.EqualFold(strings.TrimSpace(req.Kind), string(ai.KindImage)) {
			data, mimeType, err := readUpload(r, "image")
			if err != nil {
				return req, err
			}
			req.Image = data
			req.MIMEType = mimeType
		}
	}

	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	if err := apiutil.ValidateStruct(req); err != nil {
		return req, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	return req, nil
}

func (req extractRequest) input() (ai.Input, error) {
	kind, err := ai.ParseKind(req.Kind)
	if err != nil {
		return ai.Input{}, err
	}
	switch kind {
	case ai.KindURL:
		return ai.URLInput(req.URL), nil
	case ai.KindImage:
		return ai.ImageInput(req.Image, req.MIMEType), nil
	default:
		return ai.CSSInput(req.CSS), nil
	}
}

func decodeConfirmRequest(r *http.Request) (confirmRequest, error) {
	var req confirmRequest

	if isJSONRequest(r) {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return req, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}
		}
	} else {
		if err := parseForm(r); err != nil {
			return req, err
		}
		req.Name = r.FormValue("name")
	}

	if err := apiutil.ValidateStruct(req); err != nil {
		return req, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	return req, nil
}

func parseForm(r *http.Request) error {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(options.MaxUploadBytes); err != nil {
			return uploadError(err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return uploadError(err)
	}
	return nil
}

// readUpload returns an empty payload when no file was sent; the extraction client reports
// that as invalid input.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", uploadError(err)
	}
	defer file.Close()

	data, err := readLimited(file, options.MaxUploadBytes)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Failed to read upload", Err: err}
	}
	if int64(len(data)) > limit {
		return nil, apiutil.HandlerError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("Image must be at most %d MB", limit>>20),
		}
	}
	return data, nil
}

func uploadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apiutil.HandlerError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large", Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid form data", Err: err}
}

func loadController() studioController {
	return controller
}
