// Package migrations embeds the Postgres schema migrations.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS returns the migration files for golang-migrate's iofs source.
func FS() fs.FS {
	return files
}
