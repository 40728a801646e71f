package repository

import "errors"

// ErrNotFound is returned when a query matches no row. Services translate
// it into the domain error taxonomy; it never crosses the HTTP boundary.
var ErrNotFound = errors.New("record not found")
