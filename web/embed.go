// Package web provides the embedded static assets for the public blog:
// the stylesheet and the placeholder shown for articles without a
// featured image. They are served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
