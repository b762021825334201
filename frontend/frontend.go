// Package frontend provides the embedded viewer frontend assets.
//
// The frontend is plain HTML/JS committed under dist/ directly; there is
// no build step.
package frontend

import "embed"

// Files contains the embedded web frontend.
//
//go:embed dist/*
var Files embed.FS
