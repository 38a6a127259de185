// Package web holds the embedded landing page, country gallery page and
// their static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html country.html static/*
var content embed.FS

// Pages returns the page and asset file system served at the site root.
func Pages() fs.FS {
	return content
}
