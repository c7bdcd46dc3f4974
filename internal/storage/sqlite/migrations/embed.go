// Package migrations holds the schema of the client state database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
