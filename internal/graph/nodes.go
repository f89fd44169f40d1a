package graph

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UpsertNode inserts or replaces a node by id.
func (s *Store) UpsertNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("%w: node id is empty", ErrInvariantViolation)
	}
	if !ValidNodeType(n.Type) {
		return fmt.Errorf("%w: unknown node type %q", ErrInvariantViolation, n.Type)
	}
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("graph: marshal metadata: %w", err)
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO nodes (id, type, label, content, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			label = excluded.label,
			content = excluded.content,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, n.ID, string(n.Type), n.Label, n.Content, string(meta), n.CreatedAt.Unix(), n.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("graph: upsert node %s: %w", n.ID, err)
	}
	return nil
}

// GetNode looks up a node by id. Returns ErrNotFound (wrapped) if absent.
func (s *Store) GetNode(id string) (*Node, error) {
	row := s.db.QueryRow(`
		SELECT id, type, label, content, metadata, created_at, updated_at
		FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("graph: node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("graph: get node %s: %w", id, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var n Node
	var typ string
	var metaJSON []byte
	var createdUnix, updatedUnix int64
	if err := row.Scan(&n.ID, &typ, &n.Label, &n.Content, &metaJSON, &createdUnix, &updatedUnix); err != nil {
		return nil, err
	}
	n.Type = NodeType(typ)
	n.CreatedAt = time.Unix(createdUnix, 0).UTC()
	n.UpdatedAt = time.Unix(updatedUnix, 0).UTC()
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &n, nil
}

// IterateNodes calls fn for every node in the store. Iteration order is
// unspecified; fn returning an error stops iteration and propagates it.
func (s *Store) IterateNodes(fn func(Node) error) error {
	rows, err := s.db.Query(`SELECT id, type, label, content, metadata, created_at, updated_at FROM nodes`)
	if err != nil {
		return fmt.Errorf("graph: iterate nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return fmt.Errorf("graph: scan node: %w", err)
		}
		if err := fn(*n); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AllNodes collects every node into a slice. Convenience wrapper over IterateNodes.
func (s *Store) AllNodes() ([]Node, error) {
	var nodes []Node
	err := s.IterateNodes(func(n Node) error {
		nodes = append(nodes, n)
		return nil
	})
	return nodes, err
}
