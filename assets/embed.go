// Package assets embeds the data files the server ships with.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed roster.yaml api_schema.yaml sql/*.sql
var FS embed.FS

// RosterDocument returns the bundled static roster document.
func RosterDocument() ([]byte, error) {
	return FS.ReadFile("roster.yaml")
}

// APISchema returns the attribute schema applied to API-fetched rosters.
func APISchema() ([]byte, error) {
	return FS.ReadFile("api_schema.yaml")
}

// Migrations returns the SQL migrations directory as an fs.FS rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
