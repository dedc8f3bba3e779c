// Package db carries the SQL migrations that create the Shovel Heroes schema.
package db

import "embed"

// Migrations holds the golang-migrate SQL files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
