// Package studio holds the application controller: the extract → name → save pipeline and
// the transient state the interface renders.
package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/themestore"
)

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseExtracting       Phase = "extracting"
	PhaseExtractedUnsaved Phase = "extracted_unsaved"
	PhaseFailed           Phase = "failed"
	PhaseNaming           Phase = "naming"
)

var (
	ErrNoPalette  = errors.New("no extracted palette to save")
	ErrBusy       = errors.New("a save is already in progress")
	ErrNotNaming  = errors.New("no save is awaiting a name")
	ErrSaveFailed = errors.New("theme could not be saved")
)

const saveFailedMessage = "Could not save this theme. Please try again."

type Extractor interface {
	Extract(ctx context.Context, in ai.Input) (models.Palette, error)
}

type Namer interface {
	SuggestName(ctx context.Context, palette models.Palette) (string, error)
}

type ThemeStore interface {
	Themes() []models.ColorTheme
	Len() int
	Add(ctx context.Context, theme models.ColorTheme) error
	Delete(ctx context.Context, id string) (bool, error)
}

// NamePrompter asks the user to confirm or edit a suggested theme name. ok is false when
// the user cancels.
type NamePrompter interface {
	ConfirmName(ctx context.Context, suggested string) (name string, ok bool, err error)
}

// State is a snapshot of everything the interface renders.
type State struct {
	Phase         Phase
	Palette       models.Palette
	Loading       bool
	Saving        bool
	Error         string
	Warning       string
	SuggestedName string
	Themes        []models.ColorTheme
}

type Controller struct {
	extractor Extractor
	namer     Namer
	store     ThemeStore
	now       func() time.Time

	mu         sync.Mutex
	phase      Phase
	palette    models.Palette
	loading    bool
	saving     bool
	errMsg     string
	warning    string
	suggested  string
	generation uint64
}

func New(extractor Extractor, namer Namer, store ThemeStore) *Controller {
	return &Controller{
		extractor: extractor,
		namer:     namer,
		store:     store,
		now:       time.Now,
		phase:     PhaseIdle,
	}
}

// SetWarning shows a non-blocking warning until the next action, e.g. a startup load failure.
func (c *Controller) SetWarning(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warning = message
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Phase:         c.phase,
		Palette:       c.palette.Clone(),
		Loading:       c.loading,
		Saving:        c.saving,
		Error:         c.errMsg,
		Warning:       c.warning,
		SuggestedName: c.suggested,
		Themes:        c.store.Themes(),
	}
}

// clearMessagesLocked runs at the start of every user action.
func (c *Controller) clearMessagesLocked() {
	c.errMsg = ""
	c.warning = ""
}

// Extract runs one extraction. Any previous palette, pending name, or error is discarded
// first; if another extraction starts before this one returns, this result is dropped.
func (c *Controller) Extract(ctx context.Context, in ai.Input) State {
	logger := log.Ctx(ctx)

	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.clearMessagesLocked()
	c.phase = PhaseExtracting
	c.loading = true
	c.palette = nil
	c.suggested = ""
	c.mu.Unlock()

	palette, err := c.extractor.Extract(ctx, in)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		logger.Debug().Str("kind", string(in.Kind)).Msg("Discarding superseded extraction result")
		return c.stateLocked()
	}

	c.loading = false
	if err != nil {
		logger.Warn().Err(err).Str("kind", string(in.Kind)).Msg("Extraction failed")
		c.phase = PhaseFailed
		c.errMsg = ai.UserMessage(err)
		return c.stateLocked()
	}

	c.phase = PhaseExtractedUnsaved
	c.palette = palette.Clone()
	return c.stateLocked()
}

// BeginSave asks the namer for a suggestion and moves to PhaseNaming. Naming failures fall
// back to the positional name and are never shown to the user.
func (c *Controller) BeginSave(ctx context.Context) (string, error) {
	logger := log.Ctx(ctx)

	c.mu.Lock()
	switch {
	case c.saving:
		c.mu.Unlock()
		return "", ErrBusy
	case c.phase == PhaseNaming:
		suggested := c.suggested
		c.mu.Unlock()
		return suggested, nil
	case c.phase != PhaseExtractedUnsaved || len(c.palette) == 0:
		c.mu.Unlock()
		return "", ErrNoPalette
	}
	c.clearMessagesLocked()
	c.saving = true
	generation := c.generation
	palette := c.palette.Clone()
	suggested := models.FallbackThemeName(c.store.Len())
	c.mu.Unlock()

	if name, err := c.namer.SuggestName(ctx, palette); err != nil {
		logger.Info().Err(err).Str("fallback", suggested).Msg("AI name generation failed")
	} else if name = models.ClampThemeName(name); name != "" {
		suggested = name
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.saving = false
	if generation != c.generation || c.phase != PhaseExtractedUnsaved {
		return "", ErrNoPalette
	}
	c.phase = PhaseNaming
	c.suggested = suggested
	return suggested, nil
}

// ConfirmSave stores the pending palette under name, or under the suggestion when name is
// blank. A persistence failure is reported as a warning; the theme is still kept.
func (c *Controller) ConfirmSave(ctx context.Context, name string) (models.ColorTheme, error) {
	logger := log.Ctx(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseNaming {
		return models.ColorTheme{}, ErrNotNaming
	}
	c.clearMessagesLocked()

	finalName := models.ClampThemeName(name)
	if finalName == "" {
		finalName = c.suggested
	}

	theme, err := models.NewColorTheme(finalName, c.palette, c.now())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build theme from extracted palette")
		c.phase = PhaseExtractedUnsaved
		c.errMsg = saveFailedMessage
		return models.ColorTheme{}, errors.Join(ErrSaveFailed, err)
	}

	if err := c.store.Add(ctx, theme); err != nil {
		if !errors.Is(err, themestore.ErrPersistence) {
			logger.Error().Err(err).Str("theme_id", theme.ID).Msg("Failed to add theme")
			c.phase = PhaseExtractedUnsaved
			c.errMsg = saveFailedMessage
			return models.ColorTheme{}, errors.Join(ErrSaveFailed, err)
		}
		c.warning = themestore.WarningMessage(err)
	}

	logger.Info().Str("theme_id", theme.ID).Str("name", theme.Name).Msg("Theme saved")
	c.phase = PhaseIdle
	c.palette = nil
	c.suggested = ""
	return theme, nil
}

// CancelSave returns to the extracted palette without creating a theme or an error.
func (c *Controller) CancelSave() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseNaming {
		return ErrNotNaming
	}
	c.clearMessagesLocked()
	c.phase = PhaseExtractedUnsaved
	c.suggested = ""
	return nil
}

// Save runs the whole naming flow, awaiting the prompter between suggestion and commit.
// saved is false when the user cancelled.
func (c *Controller) Save(ctx context.Context, prompter NamePrompter) (theme models.ColorTheme, saved bool, err error) {
	suggested, err := c.BeginSave(ctx)
	if err != nil {
		return models.ColorTheme{}, false, err
	}

	name, ok, err := prompter.ConfirmName(ctx, suggested)
	if err != nil || !ok {
		if cancelErr := c.CancelSave(); cancelErr != nil {
			log.Ctx(ctx).Debug().Err(cancelErr).Msg("Save already left the naming phase")
		}
		return models.ColorTheme{}, false, err
	}

	theme, err = c.ConfirmSave(ctx, name)
	if err != nil {
		return models.ColorTheme{}, false, err
	}
	return theme, true, nil
}

// Discard drops the extracted palette (and any in-flight extraction) and returns to idle.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.clearMessagesLocked()
	c.phase = PhaseIdle
	c.loading = false
	c.palette = nil
	c.suggested = ""
}

// Delete removes a saved theme unconditionally. Unknown ids are a no-op.
func (c *Controller) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearMessagesLocked()
	deleted, err := c.store.Delete(ctx, id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("theme_id", id).Msg("Failed to persist theme deletion")
		c.warning = themestore.WarningMessage(err)
	}
	return deleted
}
