package layouts

import (
	"fmt"
	"strings"

	"github.com/codr1/chroma/internal/models"
)

// defaultAccent colors the page chrome until a theme has been saved.
var defaultAccent = models.Palette{"#0D1117", "#161B22", "#C9D1D9", "#58A6FF", "#F0F6FC"}

// themeCSSVars exposes a palette as CSS custom properties, falling back per slot when a color
// is missing or malformed.
func themeCSSVars(palette models.Palette) string {
	vars := make([]string, len(defaultAccent))
	for i, fallback := range defaultAccent {
		color := fallback
		if i < len(palette) {
			color = colorOrDefault(palette[i], fallback)
		}
		vars[i] = fmt.Sprintf("--theme-%d:%s;", i+1, color)
	}
	return ":root{" + strings.Join(vars, "") + "}"
}

func colorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if !models.IsHexColor(trimmed) {
		return fallback
	}
	return trimmed
}
