package ai

import (
	"encoding/json"
	"fmt"

	"github.com/codr1/chroma/internal/models"
)

const paletteField = "palette"

// ValidatePalette decodes a structured model response and returns its palette.
// Every failure wraps ErrFormat; the wrapped detail is for logs only.
func ValidatePalette(raw string) (models.Palette, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON object: %v", ErrFormat, err)
	}

	field, ok := envelope[paletteField]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q field", ErrFormat, paletteField)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(field, &elements); err != nil || elements == nil {
		return nil, fmt.Errorf("%w: %q is not an array", ErrFormat, paletteField)
	}

	palette := make(models.Palette, 0, len(elements))
	for i, element := range elements {
		var color string
		if err := json.Unmarshal(element, &color); err != nil {
			return nil, fmt.Errorf("%w: element %d is not a string", ErrFormat, i)
		}
		palette = append(palette, color)
	}

	if err := palette.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return palette, nil
}
