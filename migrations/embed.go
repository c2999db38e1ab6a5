package migrations

import "embed"

// Files holds the SQL migrations embedded into the binary.
//
//go:embed *.sql
var Files embed.FS
