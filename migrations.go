// Package liftsync holds assets compiled into the liftsync binaries.
package liftsync

import "embed"

// Migrations is the PostgreSQL schema for the server journal, under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
