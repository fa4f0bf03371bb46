// Package db embeds the catalog migrations.
package db

import "embed"

// Migrations holds the ordered *.sql files applied by postgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS
