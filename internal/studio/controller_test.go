package studio

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/themestore"
)

var testPalette = models.Palette{"#0D1117", "#C9D1D9", "#161B22", "#58A6FF", "#F0F6FC"}

type memSlots struct {
	mu     sync.Mutex
	values map[string]string
	putErr error
}

func (m *memSlots) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memSlots) Put(ctx context.Context, key, value string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = value
	return nil
}

type mockExtractor struct {
	palette models.Palette
	err     error
}

func (m *mockExtractor) Extract(ctx context.Context, in ai.Input) (models.Palette, error) {
	_ = ctx
	_ = in
	if m.err != nil {
		return nil, m.err
	}
	return m.palette.Clone(), nil
}

type mockNamer struct {
	name  string
	err   error
	calls int
}

func (m *mockNamer) SuggestName(ctx context.Context, palette models.Palette) (string, error) {
	_ = ctx
	_ = palette
	m.calls++
	return m.name, m.err
}

type promptFunc func(ctx context.Context, suggested string) (string, bool, error)

func (f promptFunc) ConfirmName(ctx context.Context, suggested string) (string, bool, error) {
	return f(ctx, suggested)
}

type fixture struct {
	controller *Controller
	store      *themestore.Store
	slots      *memSlots
	extractor  *mockExtractor
	namer      *mockNamer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	slots := &memSlots{values: map[string]string{}}
	store := themestore.New(slots, "themes")
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	extractor := &mockExtractor{palette: testPalette}
	namer := &mockNamer{name: "Midnight Harbor"}
	controller := New(extractor, namer, store)
	controller.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

	return &fixture{controller: controller, store: store, slots: slots, extractor: extractor, namer: namer}
}

func TestExtract_Success(t *testing.T) {
	f := newFixture(t)

	state := f.controller.Extract(context.Background(), ai.CSSInput("a{color:#0d1117}"))
	if state.Phase != PhaseExtractedUnsaved {
		t.Fatalf("unexpected phase %s", state.Phase)
	}
	if state.Loading || state.Error != "" {
		t.Fatalf("unexpected state %+v", state)
	}
	if !reflect.DeepEqual(state.Palette, testPalette) {
		t.Fatalf("unexpected palette %v", state.Palette)
	}
}

func TestExtract_FailureShowsGenericMessage(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = ai.ErrFormat

	state := f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	if state.Phase != PhaseFailed {
		t.Fatalf("unexpected phase %s", state.Phase)
	}
	if state.Error != ai.UserMessage(ai.ErrExtraction) {
		t.Fatalf("unexpected error message %q", state.Error)
	}
	if state.Palette != nil || state.Loading {
		t.Fatalf("palette must be absent after failure")
	}

	f.extractor.err = nil
	state = f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	if state.Error != "" {
		t.Fatalf("a new extraction must clear the previous error")
	}
}

func TestExtract_SupersededResultIsDropped(t *testing.T) {
	f := newFixture(t)

	release := make(chan struct{})
	started := make(chan struct{})
	slow := &blockingExtractor{started: started, release: release, palette: models.Palette{"#111111", "#222222", "#333333", "#444444", "#555555"}}
	f.controller.extractor = slow

	done := make(chan State)
	go func() {
		done <- f.controller.Extract(context.Background(), ai.URLInput("https://slow.example"))
	}()
	<-started

	f.controller.extractor = f.extractor
	fresh := f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	if !reflect.DeepEqual(fresh.Palette, testPalette) {
		t.Fatalf("unexpected fresh palette %v", fresh.Palette)
	}

	close(release)
	<-done

	if got := f.controller.State().Palette; !reflect.DeepEqual(got, testPalette) {
		t.Fatalf("stale extraction overwrote newer result: %v", got)
	}
}

type blockingExtractor struct {
	started chan struct{}
	release chan struct{}
	palette models.Palette
}

func (b *blockingExtractor) Extract(ctx context.Context, in ai.Input) (models.Palette, error) {
	_ = in
	close(b.started)
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.palette, nil
}

func TestSave_UsesSuggestedName(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))

	var offered string
	theme, saved, err := f.controller.Save(context.Background(), promptFunc(func(ctx context.Context, suggested string) (string, bool, error) {
		offered = suggested
		return "   ", true, nil
	}))
	if err != nil || !saved {
		t.Fatalf("Save: saved=%t err=%v", saved, err)
	}
	if offered != "Midnight Harbor" || theme.Name != "Midnight Harbor" {
		t.Fatalf("expected suggested name, offered %q saved %q", offered, theme.Name)
	}

	state := f.controller.State()
	if state.Phase != PhaseIdle || state.Palette != nil {
		t.Fatalf("expected idle without palette, got %+v", state)
	}
	if state.Themes[0].ID != theme.ID || len(state.Themes) != 4 {
		t.Fatalf("expected new theme prepended, got %v", state.Themes)
	}
	if theme.CreatedAt != "2024-06-01T09:30:00.000Z" {
		t.Fatalf("unexpected createdAt %s", theme.CreatedAt)
	}
}

func TestSave_UserEditedNameIsTrimmed(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))

	theme, saved, err := f.controller.Save(context.Background(), promptFunc(func(ctx context.Context, suggested string) (string, bool, error) {
		return "  Night Owl  ", true, nil
	}))
	if err != nil || !saved {
		t.Fatalf("Save: saved=%t err=%v", saved, err)
	}
	if theme.Name != "Night Owl" {
		t.Fatalf("unexpected name %q", theme.Name)
	}
}

func TestSave_NamingFailureFallsBackToPositionalName(t *testing.T) {
	f := newFixture(t)
	f.namer.err = errors.New("network error")
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	prior := f.store.Len()

	theme, saved, err := f.controller.Save(context.Background(), promptFunc(func(ctx context.Context, suggested string) (string, bool, error) {
		return suggested, true, nil
	}))
	if err != nil || !saved {
		t.Fatalf("Save: saved=%t err=%v", saved, err)
	}
	if theme.Name != models.FallbackThemeName(prior) || theme.Name != "Theme #4" {
		t.Fatalf("unexpected fallback name %q", theme.Name)
	}
	if state := f.controller.State(); state.Error != "" || state.Warning != "" {
		t.Fatalf("naming failures must stay silent: %+v", state)
	}
}

func TestSave_CancelKeepsPalette(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	before := f.store.Themes()

	_, saved, err := f.controller.Save(context.Background(), promptFunc(func(ctx context.Context, suggested string) (string, bool, error) {
		return "", false, nil
	}))
	if err != nil || saved {
		t.Fatalf("Save: saved=%t err=%v", saved, err)
	}

	state := f.controller.State()
	if state.Phase != PhaseExtractedUnsaved || !reflect.DeepEqual(state.Palette, testPalette) {
		t.Fatalf("palette must remain available after cancel: %+v", state)
	}
	if state.Error != "" || state.Saving {
		t.Fatalf("cancel must not show an error: %+v", state)
	}
	if !reflect.DeepEqual(f.store.Themes(), before) {
		t.Fatalf("cancel must not add a theme")
	}
}

func TestSave_PersistenceFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	f.slots.putErr = errors.New("quota exceeded")

	theme, saved, err := f.controller.Save(context.Background(), promptFunc(func(ctx context.Context, suggested string) (string, bool, error) {
		return suggested, true, nil
	}))
	if err != nil || !saved {
		t.Fatalf("Save: saved=%t err=%v", saved, err)
	}

	state := f.controller.State()
	if state.Warning != "Could not save your themes." {
		t.Fatalf("unexpected warning %q", state.Warning)
	}
	if state.Themes[0].ID != theme.ID {
		t.Fatalf("theme must stay in memory")
	}
}

func TestBeginSave_RequiresPalette(t *testing.T) {
	f := newFixture(t)

	if _, err := f.controller.BeginSave(context.Background()); !errors.Is(err, ErrNoPalette) {
		t.Fatalf("expected ErrNoPalette, got %v", err)
	}
	if _, err := f.controller.ConfirmSave(context.Background(), "x"); !errors.Is(err, ErrNotNaming) {
		t.Fatalf("expected ErrNotNaming, got %v", err)
	}
	if err := f.controller.CancelSave(); !errors.Is(err, ErrNotNaming) {
		t.Fatalf("expected ErrNotNaming, got %v", err)
	}
}

func TestBeginSave_RepeatReturnsPendingSuggestion(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))

	first, err := f.controller.BeginSave(context.Background())
	if err != nil {
		t.Fatalf("BeginSave: %v", err)
	}
	second, err := f.controller.BeginSave(context.Background())
	if err != nil || second != first {
		t.Fatalf("expected pending suggestion %q, got %q (%v)", first, second, err)
	}
	if f.namer.calls != 1 {
		t.Fatalf("expected a single naming call, got %d", f.namer.calls)
	}
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))

	f.controller.Discard()

	state := f.controller.State()
	if state.Phase != PhaseIdle || state.Palette != nil || state.Error != "" {
		t.Fatalf("unexpected state after discard: %+v", state)
	}
	if _, err := f.controller.BeginSave(context.Background()); !errors.Is(err, ErrNoPalette) {
		t.Fatalf("expected ErrNoPalette after discard, got %v", err)
	}
}

func TestNewExtractionDiscardsPendingName(t *testing.T) {
	f := newFixture(t)
	f.controller.Extract(context.Background(), ai.CSSInput("a{}"))
	if _, err := f.controller.BeginSave(context.Background()); err != nil {
		t.Fatalf("BeginSave: %v", err)
	}

	state := f.controller.Extract(context.Background(), ai.URLInput("https://example.com"))
	if state.Phase != PhaseExtractedUnsaved || state.SuggestedName != "" {
		t.Fatalf("new extraction must discard the pending save: %+v", state)
	}
	if _, err := f.controller.ConfirmSave(context.Background(), "late"); !errors.Is(err, ErrNotNaming) {
		t.Fatalf("expected ErrNotNaming, got %v", err)
	}
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	f := newFixture(t)
	themes := f.store.Themes()
	if len(themes) != 3 {
		t.Fatalf("expected 3 sample themes, got %d", len(themes))
	}

	if !f.controller.Delete(context.Background(), themes[1].ID) {
		t.Fatalf("expected delete to succeed")
	}

	remaining := f.controller.State().Themes
	if len(remaining) != 2 || remaining[0].ID != themes[0].ID || remaining[1].ID != themes[2].ID {
		t.Fatalf("unexpected remaining themes %v", remaining)
	}

	if f.controller.Delete(context.Background(), "missing") {
		t.Fatalf("unknown id must not report a deletion")
	}
	if len(f.controller.State().Themes) != 2 {
		t.Fatalf("unknown id must leave the list unchanged")
	}
}
