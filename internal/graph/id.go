package graph

import "github.com/google/uuid"

// NewSessionID generates a new random session identifier for nodes/edges
// that are not content-addressed (session- and run-scoped graph state,
// as opposed to entity nodes whose id is derived from their name).
func NewSessionID() string {
	return "session-" + uuid.NewString()
}
