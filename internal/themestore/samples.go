package themestore

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/codr1/chroma/assets"
	"github.com/codr1/chroma/internal/models"
)

type sampleTheme struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Colors    []string `yaml:"colors"`
	CreatedAt string   `yaml:"createdAt"`
}

// SampleThemes reads the bundled sample themes in file order.
func SampleThemes() ([]models.ColorTheme, error) {
	data, err := assets.SampleThemesFS.ReadFile(assets.SampleThemesPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded sample themes: %w", err)
	}

	var rows []sampleTheme
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse embedded sample themes: %w", err)
	}

	themes := make([]models.ColorTheme, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		theme := models.ColorTheme{
			ID:        row.ID,
			Name:      row.Name,
			Colors:    models.Palette(row.Colors),
			CreatedAt: row.CreatedAt,
		}
		if err := theme.Validate(); err != nil {
			return nil, fmt.Errorf("invalid sample theme %d (%q): %w", i+1, row.Name, err)
		}
		if seen[theme.ID] {
			return nil, fmt.Errorf("duplicate sample theme id %q", theme.ID)
		}
		seen[theme.ID] = true
		themes = append(themes, theme)
	}
	return themes, nil
}
