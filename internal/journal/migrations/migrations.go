// Package migrations holds the goose migrations of the journal schema. The
// SQL is shared by the SQLite and Postgres stores.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
