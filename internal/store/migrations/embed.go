// Package migrations embeds the SQL files goose applies against the
// decoded-packet store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
