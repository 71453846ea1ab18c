package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Adapters map it to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrNoContent marks a resource that exists but carries no stored payload.
	// It must stay distinguishable from ErrNotFound at the edge.
	ErrNoContent     = errors.New("resource has no stored content")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrNotReady      = errors.New("download not ready")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrVisitorUnresolvable is returned when a visitor identity could be
	// neither found nor created. Intake treats it as a soft failure.
	ErrVisitorUnresolvable = errors.New("visitor identity unresolvable")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyKeyReused is a live idempotency key presented with a
	// different request body.
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")
)
