package migrations

import "embed"

// FS contains the embedded MySQL migrations.
//
//go:embed *.sql
var FS embed.FS
