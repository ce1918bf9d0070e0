package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Validation errors signal caller bugs and are never worth retrying.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidState indicates that an operation is not permitted in the entity's
// current state (inactive account, already-reversed entry, closed year, ...).
// The wrapped detail is surfaced to the caller verbatim.
var ErrInvalidState = errors.New("invalid state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
