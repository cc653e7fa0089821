package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: document or request does not exist
//   - ErrConflict: document already exists where a create was expected
//   - ErrInvalidState: entity in the wrong state for the requested transition
//   - ErrUnavailable: backend temporarily unavailable or closed
//
// For validation errors use internal/validation; for coded errors use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
