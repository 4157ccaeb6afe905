// Package db embeds the storefront database schema.
package db

import _ "embed"

// Schema contains the idempotent DDL for every storefront table.
//
//go:embed migrations/001_schema.sql
var Schema string
