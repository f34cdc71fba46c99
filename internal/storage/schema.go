package storage

import _ "embed"

// Schema holds the DDL for the workflow tables. Integration tests apply it
// against a fresh database; deployments run it through their migration tool.
//
//go:embed schema.sql
var Schema string
