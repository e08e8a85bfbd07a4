package models

import "errors"

// Error taxonomy shared by store, services and the HTTP layer. Callers wrap
// these with fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrCapacityExceeded = errors.New("zone capacity exceeded")
	ErrUnimplemented    = errors.New("not implemented")
)
