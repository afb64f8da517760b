package core

import "errors"

// Failure taxonomy shared across services and storage. The HTTP layer maps
// these onto status codes; nothing below it inspects error strings.
var (
	// ErrInvalidToken covers malformed, unsigned and expired bearer tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUnknownSubject means a token validated but no credential matches
	// its subject. Callers treat it the same as an authentication failure.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrNotFound is returned both when a record does not exist and when it
	// belongs to another user. The two cases are deliberately
	// indistinguishable so record ids cannot be enumerated.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials rejects a login. An unknown email and a wrong
	// password produce the same error so accounts cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail signals a registration conflict on the unique email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidRange rejects inverted date or cost ranges.
	ErrInvalidRange = errors.New("range start exceeds end")
)

// Validation sentinels for malformed domain values.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyItem     = errors.New("empty item")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyEmail    = errors.New("empty email")
	ErrEmptyPassword = errors.New("empty password")
)
