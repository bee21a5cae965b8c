// Package sql embeds the goose migrations applied at startup and in tests.
package sql

import "embed"

// Migrations holds schema/*.sql.
//
//go:embed schema/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations goose reads from.
const MigrationsDir = "schema"
