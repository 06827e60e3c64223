// Package assets embeds files bundled into the binary.
package assets

import (
	"embed"
	"io/fs"
)

// SampleThemesPath is the bundled sample theme list shown on first run.
const SampleThemesPath = "sample_themes.yaml"

//go:embed sample_themes.yaml
var SampleThemesFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS serves the bundled stylesheet and scripts, rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: missing static directory: " + err.Error())
	}
	return sub
}
