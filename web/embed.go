// Package web holds the embedded page templates and static assets.
package web

import "embed"

// TemplateFS contains the demo page and landing page templates.
//
//go:embed templates
var TemplateFS embed.FS

// StaticFS contains the landing page stylesheet and script.
//
//go:embed static
var StaticFS embed.FS
