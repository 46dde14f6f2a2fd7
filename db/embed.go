// Package db embeds the store migrations so the migrate binary does not
// depend on the working directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
