package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codr1/chroma/internal/models"
)

// swatchRenderer draws palettes as colored blocks. On writers without color support the
// blocks degrade to plain hex codes.
type swatchRenderer struct {
	renderer *lipgloss.Renderer
}

func newSwatchRenderer(w io.Writer) swatchRenderer {
	return swatchRenderer{renderer: lipgloss.NewRenderer(w)}
}

func (s swatchRenderer) palette(colors models.Palette) string {
	blocks := make([]string, len(colors))
	for i, color := range colors {
		hex := strings.ToUpper(color)
		style := s.renderer.NewStyle().
			Background(lipgloss.Color(hex)).
			Foreground(lipgloss.Color(contrastColor(hex))).
			Padding(0, 1)
		blocks[i] = style.Render(hex)
	}
	return strings.Join(blocks, " ")
}

func (s swatchRenderer) title(text string) string {
	return s.renderer.NewStyle().Bold(true).Render(text)
}

func (s swatchRenderer) warning(text string) string {
	return s.renderer.NewStyle().Foreground(lipgloss.Color("#D29922")).Render(text)
}

// contrastColor picks black or white text for a #RRGGBB background using relative luminance.
func contrastColor(hex string) string {
	if !models.IsHexColor(hex) {
		return "#FFFFFF"
	}
	channel := func(offset int) float64 {
		value, _ := strconv.ParseUint(hex[offset:offset+2], 16, 8)
		return float64(value) / 255
	}
	luminance := 0.2126*channel(1) + 0.7152*channel(3) + 0.0722*channel(5)
	if luminance > 0.5 {
		return "#000000"
	}
	return "#FFFFFF"
}

func printPalette(w io.Writer, s swatchRenderer, colors models.Palette) {
	fmt.Fprintln(w, s.palette(colors))
}
