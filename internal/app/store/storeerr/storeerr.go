// Package storeerr holds the sentinel errors shared by every store
// package, so callers can errors.Is against one contract instead of one
// sentinel per entity.
package storeerr

import "errors"

var (
	// ErrNotFound reports that a load by id matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate reports a unique-index collision on insert or update.
	ErrDuplicate = errors.New("duplicate")
)
