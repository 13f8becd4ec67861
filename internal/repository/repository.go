// Package repository holds the in-memory record store. Every repository
// guards its map with a RWMutex and hands out deep copies: the repository is
// the sole mutator of its records, so a snapshot a caller holds never
// observes later mutation.
package repository

import "errors"

// Sentinel errors returned by the store; services translate these into the
// typed API error taxonomy.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)
