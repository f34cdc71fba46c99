package storage

import dErrors "hearth/pkg/domain-errors"

var (
	// ErrNotFound keeps storage-specific 404s consistent across the in-memory
	// and Postgres implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

	// ErrDuplicate is returned by insert-if-absent operations when a record
	// already exists for the uniqueness key.
	ErrDuplicate = dErrors.New(dErrors.CodeConflict, "record already exists")

	// ErrStaleState signals a failed conditional update: another writer moved
	// the record out of the expected state first. Callers should re-fetch and
	// retry rather than overwrite.
	ErrStaleState = dErrors.New(dErrors.CodeConflict, "record state changed concurrently")
)
