// Package assets embeds the static files served under /static/.
package assets

import "embed"

// StaticFS holds the stylesheet and frontend glue script.
//
//go:embed static/*
var StaticFS embed.FS
