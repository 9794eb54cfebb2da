package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var FS embed.FS

// Migrations returns the SQL migration files rooted at their directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// sql/ is embedded at build time; Sub only fails on a bad path.
		panic(err)
	}
	return sub
}
