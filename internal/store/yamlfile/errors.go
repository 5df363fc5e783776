// Package yamlfile implements the flat-file persistence layer: the project
// sidecar stored next to each document and the per-session metadata record.
// Records are rewritten whole on every mutation.
package yamlfile

import "errors"

// ErrNotFound indicates the record does not exist yet. Callers can offer to
// initialize instead of failing.
var ErrNotFound = errors.New("record not found")

// ErrInvalid indicates the record exists but could not be parsed.
var ErrInvalid = errors.New("record invalid")
