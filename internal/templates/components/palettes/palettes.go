package palettes

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/chroma/internal/ai"
)

// htmlBuilder accumulates markup and keeps the first write error.
type htmlBuilder struct {
	w   io.Writer
	err error
}

func (b *htmlBuilder) raw(parts ...string) {
	for _, part := range parts {
		if b.err != nil {
			return
		}
		_, b.err = io.WriteString(b.w, part)
	}
}

func (b *htmlBuilder) text(value string) {
	b.raw(templ.EscapeString(value))
}

func (b *htmlBuilder) component(ctx context.Context, c templ.Component) {
	if b.err != nil {
		return
	}
	b.err = c.Render(ctx, b.w)
}

// Studio is the main page body: input panel, result area and saved themes gallery.
func Studio(data StudioData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		b.raw(`<main class="studio">`)
		b.raw(`<header class="studio-header"><h1>Chroma</h1><p>Extract a five-color palette from CSS, a website, or an image.</p></header>`)
		b.raw(`<section id="input-panel" class="panel">`)
		b.component(ctx, InputPanel(data.Input))
		b.raw(`</section>`)
		b.raw(`<section id="palette-result" class="panel" aria-live="polite">`)
		b.component(ctx, Result(data.Result))
		b.raw(`</section>`)
		b.raw(`<section class="panel"><h2>My Saved Themes</h2>`)
		b.raw(`<div id="theme-gallery" hx-get="/api/v1/themes" hx-trigger="refreshThemes from:body" hx-swap="innerHTML">`)
		b.component(ctx, Gallery(data.Themes))
		b.raw(`</div></section>`)
		b.raw(`</main>`)
		return b.err
	})
}

// InputPanel renders the source tabs and the form for the active one.
func InputPanel(data InputData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		b.raw(`<nav class="tabs" role="tablist">`)
		for _, tab := range data.Tabs {
			class := "tab"
			selected := "false"
			if tab.Active {
				class = "tab tab-active"
				selected = "true"
			}
			b.raw(`<button type="button" role="tab" class="`, class, `" aria-selected="`, selected, `"`)
			b.raw(` hx-get="/api/v1/input?tab=`, url.QueryEscape(string(tab.Kind)), `" hx-target="#input-panel" hx-swap="innerHTML">`)
			b.text(tab.Label)
			b.raw(`</button>`)
		}
		b.raw(`</nav>`)

		b.raw(`<form class="extract-form" hx-post="/api/v1/extract" hx-target="#palette-result" hx-swap="innerHTML"`)
		b.raw(` hx-encoding="multipart/form-data" hx-disabled-elt="find button[type=submit]">`)
		b.raw(`<input type="hidden" name="kind" value="`, templ.EscapeString(string(data.Active)), `">`)
		switch data.Active {
		case ai.KindURL:
			b.raw(`<label for="url-input">Website URL</label>`)
			b.raw(`<input id="url-input" type="url" name="url" placeholder="https://example.com" required>`)
		case ai.KindImage:
			b.raw(`<label for="image-input">Upload an image</label>`)
			b.raw(`<input id="image-input" type="file" name="image" accept="image/png,image/jpeg,image/webp" required>`)
		default:
			b.raw(`<label for="css-input">Paste CSS</label>`)
			b.raw(`<textarea id="css-input" name="css" rows="10" placeholder=":root { --primary: #0d1117; }" required></textarea>`)
		}
		b.raw(`<button type="submit" class="button button-primary">`)
		b.raw(`<span class="label-idle">Extract Colors</span><span class="label-busy">Extracting...</span>`)
		b.raw(`</button></form>`)
		return b.err
	})
}

// Result renders the extraction outcome: messages, swatches and the save controls.
func Result(data ResultData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		if data.Error != "" {
			b.raw(`<div class="feedback feedback-error" role="alert">`)
			b.text(data.Error)
			b.raw(`</div>`)
		}
		if data.Warning != "" {
			b.raw(`<div class="feedback feedback-warning" role="status">`)
			b.text(data.Warning)
			b.raw(`</div>`)
		}
		if !data.HasPalette() {
			return b.err
		}

		b.component(ctx, Swatches(data.Colors))
		b.raw(`<div class="result-actions">`)
		b.raw(`<button type="button" class="button button-primary" hx-post="/api/v1/palette/save" hx-target="#palette-dialog" hx-swap="innerHTML" hx-disabled-elt="this"`)
		if data.Naming {
			b.raw(` disabled`)
		}
		b.raw(`><span class="label-idle">Save Theme</span><span class="label-busy">Naming...</span></button>`)
		b.raw(`<button type="button" class="button" hx-post="/api/v1/palette/discard" hx-target="#palette-result" hx-swap="innerHTML">Discard</button>`)
		b.raw(`</div>`)
		b.raw(`<div id="palette-dialog">`)
		if data.Naming {
			b.component(ctx, NameDialog(data.SuggestedName))
		}
		b.raw(`</div>`)
		return b.err
	})
}

// Swatches renders click-to-copy color tiles.
func Swatches(colors []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		b.raw(`<div class="swatches">`)
		for _, color := range colors {
			escaped := templ.EscapeString(strings.ToUpper(color))
			b.raw(`<button type="button" class="swatch" style="background-color:`, escaped, `" data-copy="`, escaped, `" title="Copy `, escaped, `">`)
			b.raw(`<span class="swatch-label">`, escaped, `</span></button>`)
		}
		b.raw(`</div>`)
		return b.err
	})
}

// NameDialog asks the user to confirm or edit the suggested theme name.
func NameDialog(suggested string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		// app.js opens [data-modal] dialogs with showModal after each swap.
		b.raw(`<dialog class="name-dialog" data-modal aria-labelledby="theme-name-label">`)
		b.raw(`<form hx-post="/api/v1/palette/save/confirm" hx-target="#palette-result" hx-swap="innerHTML">`)
		b.raw(`<label id="theme-name-label" for="theme-name">Enter a name for this theme:</label>`)
		b.raw(`<input id="theme-name" type="text" name="name" maxlength="100" autofocus value="`, templ.EscapeString(suggested), `">`)
		b.raw(`<div class="dialog-actions">`)
		b.raw(`<button type="submit" class="button button-primary">Save</button>`)
		b.raw(`<button type="button" class="button" hx-post="/api/v1/palette/save/cancel" hx-target="#palette-result" hx-swap="innerHTML">Cancel</button>`)
		b.raw(`</div></form></dialog>`)
		return b.err
	})
}

// Gallery renders saved themes, newest first.
func Gallery(themes []ThemeCard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		if len(themes) == 0 {
			b.raw(`<p class="empty">You haven't saved any themes yet.</p>`)
			return b.err
		}
		b.raw(`<ul class="gallery">`)
		for _, theme := range themes {
			b.component(ctx, Card(theme))
		}
		b.raw(`</ul>`)
		return b.err
	})
}

func Card(theme ThemeCard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlBuilder{w: w}
		b.raw(`<li class="theme-card" id="theme-`, templ.EscapeString(theme.ID), `">`)
		b.raw(`<div class="theme-card-header"><h3>`)
		b.text(theme.Name)
		b.raw(`</h3>`)
		b.raw(`<button type="button" class="button button-danger" aria-label="Delete theme"`)
		b.raw(fmt.Sprintf(` hx-delete="/api/v1/themes/%s"`, templ.EscapeString(url.PathEscape(theme.ID))))
		b.raw(` hx-target="#theme-gallery" hx-swap="innerHTML">Delete</button></div>`)
		b.raw(`<p class="saved-on">Saved on `)
		b.text(theme.SavedOn)
		b.raw(`</p>`)
		b.component(ctx, Swatches(theme.Colors))
		b.raw(`</li>`)
		return b.err
	})
}

// Notice renders a non-blocking warning banner; it renders nothing for an empty message.
func Notice(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		b := &htmlBuilder{w: w}
		b.raw(`<div class="feedback feedback-warning" role="status">`)
		b.text(message)
		b.raw(`</div>`)
		return b.err
	})
}
