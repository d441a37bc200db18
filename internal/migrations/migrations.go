// Package migrations embeds the Credential Store schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
