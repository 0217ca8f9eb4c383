// Package assets embeds the browser viewer for the web preview display.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFS embed.FS

// WebUI holds the viewer page rooted at "/".
var WebUI = mustSub(webFS, "web")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("assets: " + err.Error())
	}
	return sub
}
