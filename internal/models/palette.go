package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// PaletteSize is the number of colors in every palette and saved theme.
const PaletteSize = 5

const maxThemeNameLength = 100

// CreatedAtLayout matches the millisecond ISO-8601 form stored in the themes slot.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether value is exactly '#' followed by six hex digits.
func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(value)
}

// Palette is an ordered list of hex colors. Order is display order.
type Palette []string

func (p Palette) Validate() error {
	if len(p) != PaletteSize {
		return fmt.Errorf("palette must have exactly %d colors, got %d", PaletteSize, len(p))
	}
	for i, color := range p {
		if !IsHexColor(color) {
			return fmt.Errorf("color %d (%q) must be a 6-digit hex color like #AABBCC", i+1, color)
		}
	}
	return nil
}

func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	copy(out, p)
	return out
}

func (p Palette) String() string {
	return strings.Join(p, ", ")
}

// ColorTheme is a saved, named palette.
type ColorTheme struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Colors    Palette `json:"colors"`
	CreatedAt string  `json:"createdAt"`
}

// NewColorTheme validates colors and name before building a theme with a fresh id.
func NewColorTheme(name string, colors Palette, now time.Time) (ColorTheme, error) {
	if err := colors.Validate(); err != nil {
		return ColorTheme{}, err
	}
	theme := ColorTheme{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Colors:    colors.Clone(),
		CreatedAt: FormatCreatedAt(now),
	}
	if err := theme.Validate(); err != nil {
		return ColorTheme{}, err
	}
	return theme, nil
}

func (t ColorTheme) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("id is required")
	}
	trimmedName := strings.TrimSpace(t.Name)
	if trimmedName == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(trimmedName) > maxThemeNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxThemeNameLength)
	}
	if err := t.Colors.Validate(); err != nil {
		return err
	}
	if _, err := t.CreatedTime(); err != nil {
		return fmt.Errorf("createdAt must be an ISO-8601 timestamp: %w", err)
	}
	return nil
}

// CreatedTime parses CreatedAt.
func (t ColorTheme) CreatedTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, t.CreatedAt)
}

func FormatCreatedAt(now time.Time) string {
	return now.UTC().Format(CreatedAtLayout)
}

// FallbackThemeName is the positional name used when no AI suggestion is available.
func FallbackThemeName(existing int) string {
	return fmt.Sprintf("Theme #%d", existing+1)
}

// ClampThemeName trims name and cuts it to the maximum stored length.
func ClampThemeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= maxThemeNameLength {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:maxThemeNameLength]))
}
