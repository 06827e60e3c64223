package ai

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/codr1/chroma/internal/models"
)

const (
	cssTemperature    float32 = 0.2
	urlTemperature    float32 = 0.7
	namingTemperature float32 = 0.8
)

func cssPrompt(css string) string {
	return fmt.Sprintf(`Analyze the following CSS code and extract a cohesive %d-color palette. The palette should include primary, secondary, and accent colors that represent the overall theme. Return the result as a JSON object with a "palette" key containing an array of %d hex color strings.

CSS Code:
`+"```css\n%s\n```", models.PaletteSize, models.PaletteSize, css)
}

func urlPrompt(url string) string {
	return fmt.Sprintf(`Imagine a brand and website for the URL: %q. Based on the domain name, potential industry, and target audience, generate a fitting %d-color palette. Return the result as a JSON object with a "palette" key containing an array of %d hex color strings.`, url, models.PaletteSize, models.PaletteSize)
}

func imagePrompt() string {
	return fmt.Sprintf(`Analyze this image and extract the %d most representative and harmonious colors from it. Return a JSON object with a "palette" key containing an array of %d hex color strings.`, models.PaletteSize, models.PaletteSize)
}

func namingPrompt(palette models.Palette) string {
	return fmt.Sprintf(`Based on this color palette [%s], generate a short, creative, and evocative name for a color theme. Examples: "Oceanic Sunset", "Forest Whisper", "Cyberpunk Neon". Return only the name as a plain string, with no quotes or extra text.`, palette.String())
}

// paletteSchema constrains structured responses to {"palette": ["#RRGGBB", ...]}.
func paletteSchema() *genai.Schema {
	size := int64(models.PaletteSize)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			paletteField: {
				Type:        genai.TypeArray,
				Description: fmt.Sprintf("An array of %d hex color code strings representing the color palette.", models.PaletteSize),
				MinItems:    &size,
				MaxItems:    &size,
				Items: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A hex color code string, e.g., '#RRGGBB'.",
					Pattern:     "^#[0-9a-fA-F]{6}$",
				},
			},
		},
		Required: []string{paletteField},
	}
}

func paletteConfig(temperature *float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   paletteSchema(),
		Temperature:      temperature,
	}
}
