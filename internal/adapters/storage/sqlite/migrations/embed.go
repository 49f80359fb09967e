// Package migrations embeds the ordered SQLite schema and seed scripts.
package migrations

import "embed"

// FS contains the embedded migrations, applied in lexical file order.
//
//go:embed *.sql
var FS embed.FS
