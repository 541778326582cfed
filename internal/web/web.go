// Package web embeds the HTML templates and static assets served by the
// card views.
package web

import "embed"

//go:embed templates/*.html static/*
var FS embed.FS
