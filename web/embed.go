// Package web bundles the invoice page templates and its static assets into
// the binary.
package web

import "embed"

// TemplatesFS holds index.html and the "ledger" partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the notification script.
//
//go:embed static/*
var StaticFS embed.FS
