// Package migrations embeds the PostgreSQL schema for projects, tasks and
// user profiles.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
