package graph

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertEdge inserts an edge, skipping it (without error) when either
// endpoint is absent from the store — per spec §4.D, insertion is
// idempotent per (source, target, relationship, validFrom, recordedAt) —
// see idx_edges_unique's COALESCE folding for why that holds even when
// validFrom/recordedAt are both unset — and silently ignores dangling
// endpoints rather than failing loudly, since extraction pipelines
// routinely produce edges slightly ahead of their target node's own
// upsert.
func (s *Store) InsertEdge(e Edge) error {
	if e.ValidFrom != nil && e.ValidUntil != nil && e.ValidFrom.After(*e.ValidUntil) {
		return fmt.Errorf("%w: validFrom after validUntil", ErrInvariantViolation)
	}
	if e.RecordedAt != nil && e.SupersededAt != nil && e.RecordedAt.After(*e.SupersededAt) {
		return fmt.Errorf("%w: recordedAt after supersededAt", ErrInvariantViolation)
	}

	if _, err := s.GetNode(e.Source); err != nil {
		return nil //nolint: endpoints absent, edge ignored per I1
	}
	if _, err := s.GetNode(e.Target); err != nil {
		return nil
	}

	weight := e.Weight
	if weight == 0 {
		weight = WeightPrimary
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO edges
			(source, target, relationship, weight, pramana, viveka, valid_from, valid_until, recorded_at, superseded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.Source, e.Target, e.Relationship, weight, e.Pramana, e.Viveka,
		unixOrNil(e.ValidFrom), unixOrNil(e.ValidUntil), unixOrNil(e.RecordedAt), unixOrNil(e.SupersededAt),
	)
	if err != nil {
		return fmt.Errorf("graph: insert edge %s->%s: %w", e.Source, e.Target, err)
	}
	return nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func scanEdge(row rowScanner) (*Edge, error) {
	var e Edge
	var validFrom, validUntil, recordedAt, supersededAt sql.NullInt64
	if err := row.Scan(&e.Source, &e.Target, &e.Relationship, &e.Weight, &e.Pramana, &e.Viveka,
		&validFrom, &validUntil, &recordedAt, &supersededAt); err != nil {
		return nil, err
	}
	e.ValidFrom = nullTimePtr(validFrom)
	e.ValidUntil = nullTimePtr(validUntil)
	e.RecordedAt = nullTimePtr(recordedAt)
	e.SupersededAt = nullTimePtr(supersededAt)
	return &e, nil
}

func nullTimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0).UTC()
	return &t
}

const edgeCols = `source, target, relationship, weight, pramana, viveka, valid_from, valid_until, recorded_at, superseded_at`

// IterateEdges calls fn for every edge, live or tombstoned.
func (s *Store) IterateEdges(fn func(Edge) error) error {
	rows, err := s.db.Query(`SELECT ` + edgeCols + ` FROM edges`)
	if err != nil {
		return fmt.Errorf("graph: iterate edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return fmt.Errorf("graph: scan edge: %w", err)
		}
		if err := fn(*e); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AllEdges collects every live edge (SupersededAt == nil) into a slice.
func (s *Store) AllEdges() ([]Edge, error) {
	var edges []Edge
	err := s.IterateEdges(func(e Edge) error {
		if e.Live() {
			edges = append(edges, e)
		}
		return nil
	})
	return edges, err
}

// Neighbors returns the node ids reachable from nodeID in the requested
// direction over live edges only.
func (s *Store) Neighbors(nodeID string, dir Direction) ([]string, error) {
	var query string
	switch dir {
	case DirOut:
		query = `SELECT DISTINCT target FROM edges WHERE source = ? AND superseded_at IS NULL`
	case DirIn:
		query = `SELECT DISTINCT source FROM edges WHERE target = ? AND superseded_at IS NULL`
	case DirBoth:
		query = `
			SELECT DISTINCT target FROM edges WHERE source = ? AND superseded_at IS NULL
			UNION
			SELECT DISTINCT source FROM edges WHERE target = ? AND superseded_at IS NULL`
	}

	var rows *sql.Rows
	var err error
	if dir == DirBoth {
		rows, err = s.db.Query(query, nodeID, nodeID)
	} else {
		rows, err = s.db.Query(query, nodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("graph: neighbors of %s: %w", nodeID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("graph: scan neighbor: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TombstoneEdge marks a live edge as superseded at the given time.
func (s *Store) TombstoneEdge(source, target, relationship string, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE edges SET superseded_at = ?
		WHERE source = ? AND target = ? AND relationship = ? AND superseded_at IS NULL
	`, at.Unix(), source, target, relationship)
	if err != nil {
		return fmt.Errorf("graph: tombstone edge %s->%s: %w", source, target, err)
	}
	return nil
}

// RemoveSession tombstones the edges owned by a session: the session's
// out-edges to its turn nodes and the `mentions` edges they produced. Nodes
// themselves are not physically deleted — only their owning edges are
// tombstoned, per spec §3 lifecycle (tombstone, don't physically delete,
// unless a purge is explicitly requested).
func (s *Store) RemoveSession(sessionID string) error {
	now := time.Now().UTC()
	turnIDs, err := s.Neighbors(sessionID, DirOut)
	if err != nil {
		return fmt.Errorf("graph: remove session %s: %w", sessionID, err)
	}
	if err := s.tombstoneEdgesFrom(sessionID, now); err != nil {
		return err
	}
	for _, turnID := range turnIDs {
		if err := s.tombstoneEdgesFrom(turnID, now); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMemory tombstones all edges owned by a memory scope (the fact
// node and any edges it produced).
func (s *Store) RemoveMemory(scope string) error {
	return s.tombstoneEdgesFrom(scope, time.Now().UTC())
}

func (s *Store) tombstoneEdgesFrom(nodeID string, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE edges SET superseded_at = ?
		WHERE (source = ? OR target = ?) AND superseded_at IS NULL
	`, at.Unix(), nodeID, nodeID)
	if err != nil {
		return fmt.Errorf("graph: tombstone edges for %s: %w", nodeID, err)
	}
	return nil
}
