// Package dashboard provides the embedded web UI assets for the todo API.
//
// This package uses Go's embed directive to include the dashboard HTML, CSS,
// and JavaScript at compile time. This enables single-binary deployment
// without external asset files.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Todo page with inline CSS and JavaScript
//
// index.html contains a {{.Title}} placeholder that the server replaces
// with the configured title.
//
//go:embed assets/*
var Assets embed.FS
