package db

import "embed"

// EmbedMigrations contains the embedded SQL migration files for both the
// master store (migrations/master) and per-tenant stores (migrations/tenant).
//
//go:embed migrations/master/*.sql migrations/tenant/*.sql
var EmbedMigrations embed.FS
