// Package themestore keeps the ordered list of saved themes and mirrors it into a single
// persistent key/value slot.
package themestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/chroma/internal/models"
)

var (
	// ErrPersistence marks any failure reading or writing the themes slot.
	ErrPersistence = errors.New("theme persistence failed")

	ErrLoadFailed = fmt.Errorf("%w: could not load themes", ErrPersistence)
	ErrSaveFailed = fmt.Errorf("%w: could not save themes", ErrPersistence)

	ErrInvalidTheme = errors.New("invalid theme")
	ErrDuplicateID  = errors.New("theme id already exists")
)

const corruptSlotSuffix = ".corrupt"

// Slots is the key/value storage the store persists into.
type Slots interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

type Store struct {
	mu     sync.Mutex
	slots  Slots
	key    string
	themes []models.ColorTheme
}

func New(slots Slots, key string) *Store {
	return &Store{slots: slots, key: key}
}

// Load reads the slot once. A valid list is used verbatim, even when empty. A missing slot
// yields the sample themes; an unreadable or corrupt slot also yields the sample themes and
// returns an error wrapping ErrLoadFailed, which callers surface as a warning.
func (s *Store) Load(ctx context.Context) error {
	logger := log.Ctx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.slots.Get(ctx, s.key)
	if err != nil {
		logger.Error().Err(err).Str("slot", s.key).Msg("Failed to load themes from storage")
		return s.useSamples(fmt.Errorf("%w: %v", ErrLoadFailed, err))
	}
	if !ok || strings.TrimSpace(raw) == "" {
		logger.Info().Str("slot", s.key).Msg("No saved themes, using samples")
		return s.useSamples(nil)
	}

	themes, err := decodeThemes(raw)
	if err != nil {
		logger.Error().Err(err).Str("slot", s.key).Msg("Saved themes are corrupt, using samples")
		if putErr := s.slots.Put(ctx, s.key+corruptSlotSuffix, raw); putErr != nil {
			logger.Error().Err(putErr).Str("slot", s.key+corruptSlotSuffix).Msg("Failed to preserve corrupt themes")
		}
		return s.useSamples(fmt.Errorf("%w: %v", ErrLoadFailed, err))
	}

	s.themes = themes
	MetricThemes.Set(float64(len(themes)))
	logger.Info().Int("count", len(themes)).Msg("Loaded saved themes")
	return nil
}

func (s *Store) useSamples(loadErr error) error {
	samples, err := SampleThemes()
	if err != nil {
		return errors.Join(loadErr, err)
	}
	s.themes = samples
	MetricThemes.Set(float64(len(samples)))
	return loadErr
}

func decodeThemes(raw string) ([]models.ColorTheme, error) {
	var themes []models.ColorTheme
	if err := json.Unmarshal([]byte(raw), &themes); err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}
	if themes == nil {
		return nil, fmt.Errorf("themes slot does not hold a list")
	}
	seen := make(map[string]bool, len(themes))
	for i, theme := range themes {
		if err := theme.Validate(); err != nil {
			return nil, fmt.Errorf("theme %d: %w", i, err)
		}
		if seen[theme.ID] {
			return nil, fmt.Errorf("theme %d: duplicate id %q", i, theme.ID)
		}
		seen[theme.ID] = true
	}
	return themes, nil
}

// Themes returns a copy of the current ordered list, most recent first.
func (s *Store) Themes() []models.ColorTheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneThemes(s.themes)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.themes)
}

func (s *Store) Get(id string) (models.ColorTheme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, theme := range s.themes {
		if theme.ID == id {
			return cloneTheme(theme), true
		}
	}
	return models.ColorTheme{}, false
}

// Add prepends theme and persists the full list. The theme stays in memory even when the
// write fails; the returned error then wraps ErrSaveFailed.
func (s *Store) Add(ctx context.Context, theme models.ColorTheme) error {
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.themes {
		if existing.ID == theme.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, theme.ID)
		}
	}

	next := make([]models.ColorTheme, 0, len(s.themes)+1)
	next = append(next, cloneTheme(theme))
	next = append(next, s.themes...)
	return s.replace(ctx, next)
}

// Delete removes the theme with id. Unknown ids leave the list and the slot untouched.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.ColorTheme, 0, len(s.themes))
	for _, theme := range s.themes {
		if theme.ID != id {
			next = append(next, theme)
		}
	}
	if len(next) == len(s.themes) {
		return false, nil
	}
	return true, s.replace(ctx, next)
}

// replace swaps in next and writes it. Callers hold s.mu.
func (s *Store) replace(ctx context.Context, next []models.ColorTheme) error {
	s.themes = next
	MetricThemes.Set(float64(len(next)))

	data, err := json.Marshal(next)
	if err != nil {
		MetricWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := s.slots.Put(ctx, s.key, string(data)); err != nil {
		MetricWrites.WithLabelValues("error").Inc()
		log.Ctx(ctx).Error().Err(err).Str("slot", s.key).Msg("Failed to save themes to storage")
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	MetricWrites.WithLabelValues("success").Inc()
	return nil
}

// Snapshot returns the current list as indented JSON in the slot's field layout.
func (s *Store) Snapshot() ([]byte, error) {
	themes := s.Themes()
	if themes == nil {
		themes = []models.ColorTheme{}
	}
	return json.MarshalIndent(themes, "", "  ")
}

// WarningMessage converts a persistence error into the warning shown to the user.
func WarningMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoadFailed):
		return "Could not load your saved themes."
	case errors.Is(err, ErrSaveFailed):
		return "Could not save your themes."
	default:
		return ""
	}
}

func cloneThemes(themes []models.ColorTheme) []models.ColorTheme {
	out := make([]models.ColorTheme, len(themes))
	for i, theme := range themes {
		out[i] = cloneTheme(theme)
	}
	return out
}

func cloneTheme(theme models.ColorTheme) models.ColorTheme {
	theme.Colors = theme.Colors.Clone()
	return theme
}
