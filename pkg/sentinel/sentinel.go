// Package sentinel holds infrastructure sentinel errors. Stores return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrUnavailable: backing resource temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/errors directly.
package sentinel

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
