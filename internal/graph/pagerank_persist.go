package graph

import (
	"fmt"
	"time"
)

// SavePageRank persists a full score map, replacing whatever was there —
// a full in-transaction rewrite of the pagerank table. Nodes and edges
// are not rewritten this way; UpsertNode and InsertEdge write them row by
// row.
func (s *Store) SavePageRank(scores map[string]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("graph: save pagerank: begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pagerank`); err != nil {
		tx.Rollback()
		return fmt.Errorf("graph: save pagerank: clear: %w", err)
	}
	now := time.Now().UTC().Unix()
	stmt, err := tx.Prepare(`INSERT INTO pagerank (node_id, score, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("graph: save pagerank: prepare: %w", err)
	}
	defer stmt.Close()
	for id, score := range scores {
		if _, err := stmt.Exec(id, score, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("graph: save pagerank: insert %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graph: save pagerank: commit: %w", err)
	}
	return nil
}

// LoadPageRank reads the persisted score map. Returns an empty, non-nil
// map if nothing has been saved yet.
func (s *Store) LoadPageRank() (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT node_id, score FROM pagerank`)
	if err != nil {
		return nil, fmt.Errorf("graph: load pagerank: %w", err)
	}
	defer rows.Close()
	scores := make(map[string]float64)
	for rows.Next() {
		var id string
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("graph: scan pagerank row: %w", err)
		}
		scores[id] = score
	}
	return scores, rows.Err()
}
