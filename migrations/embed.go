// Package migrations embeds the SQL migrations so the CLI binary carries its
// own schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
