// Package db embeds the PostgreSQL schema for the optional per-key backend.
package db

import _ "embed"

// Schema is the DDL applied at startup. Statements are idempotent.
//
//go:embed schema.sql
var Schema string
