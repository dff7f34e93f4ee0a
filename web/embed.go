// Package web embeds the server-rendered HTML templates.
package web

import "embed"

// TemplatesFS holds the page and HTMX fragment templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
