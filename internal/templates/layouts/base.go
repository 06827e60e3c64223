package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/codr1/chroma/internal/models"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

// Base wraps content in the page shell. accent tints the chrome, usually the newest saved theme.
func Base(title string, content templ.Component, accent models.Palette) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title>`+
			`<link rel="stylesheet" href="/static/css/app.css">`+
			`<style>`+themeCSSVars(accent)+`</style>`+
			`<script src="`+htmxScript+`" defer></script>`+
			`<script src="/static/js/app.js" defer></script>`+
			`</head><body>`); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
