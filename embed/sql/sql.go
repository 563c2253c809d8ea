package sql

import _ "embed"

// Schema is the full database schema, applied on every startup.
// All statements are idempotent.
//
//go:embed schema.sql
var Schema string
