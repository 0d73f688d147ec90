// Package web holds the browser chat page served at the root path.
package web

import "embed"

// StaticFS contains index.html and the script and stylesheet it loads.
//
//go:embed static/*
var StaticFS embed.FS
