package graph

import "errors"

// ErrInvariantViolation is returned when an operation would breach one of
// the invariants I1-I6 in spec §3. The operation is rejected; the store
// is left unchanged.
var ErrInvariantViolation = errors.New("graph: invariant violation")

// ErrNotFound is returned by lookups that find nothing — never a panic,
// never a bare nil with no signal.
var ErrNotFound = errors.New("graph: not found")
