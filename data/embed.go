// Package data provides the embedded game resources: maps, tilesets,
// location config and the per-track dialogue and quiz files.
package data

import "embed"

// dataFS embeds every resource the runtime loads at build time.
//
//go:embed locations.json maps tracks
var dataFS embed.FS

// FS returns the embedded filesystem containing game data.
func FS() embed.FS {
	return dataFS
}
