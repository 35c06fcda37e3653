// Package repository defines error types that are reused across every
// store implementation (MySQL in this package, MongoDB and memory in the
// sub-packages).  These sentinel values allow the service layer to
// distinguish between failure scenarios without knowing which driver
// produced them.
package repository

import "errors"

// ErrNotFound is returned when a user or product does not exist.
// Malformed identifiers are reported the same way.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when the unique constraint on the user
// email rejects an insert.  It is the source of truth for email
// uniqueness when two registrations race.
var ErrEmailExists = errors.New("email already exists")

// ErrProductExists is returned when a product with the same business id
// is already stored.
var ErrProductExists = errors.New("product already exists")
