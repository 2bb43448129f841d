// Package web embeds the page templates and the static assets served under
// /static/ and attached to PDF conversions.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var Templates embed.FS

//go:embed static
var static embed.FS

// Assets returns the static files rooted at their public path, so
// "css/app.css" is served as /static/css/app.css.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
