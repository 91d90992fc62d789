// Package migrations embeds the journal schema migrations.
package migrations

import "embed"

// FS holds the embedded SQL migrations for the arcade journal database.
//
//go:embed *.sql
var FS embed.FS
