// Package migrations holds the goose SQL migrations for the alert journal.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
