// Package assets carries the templates `nodebbs init` writes out.
package assets

import "embed"

//go:embed config.yml views.yml
var FS embed.FS
