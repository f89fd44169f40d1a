package graph

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// jsonGraph mirrors the legacy graph.json shape: {nodes: [Node], edges: [Edge]}.
type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Label     string         `json:"label"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

type jsonEdge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
	ValidFrom    *int64  `json:"valid_from,omitempty"`
	ValidUntil   *int64  `json:"valid_until,omitempty"`
	RecordedAt   *int64  `json:"recorded_at,omitempty"`
	SupersededAt *int64  `json:"superseded_at,omitempty"`
}

// MigrateFromJSON performs a one-shot, idempotent migration from legacy
// graph.json/pagerank.json files into SQLite, per spec §4.D/§4.K. It is
// a no-op if graphJSONPath doesn't exist. On success the source files are
// renamed to "*.bak" so a repeated call is a no-op thereafter. Read and
// parse failures of graph.json, pagerank.json failures and rename failures
// are logged and non-fatal; a failed database transaction is returned as
// an error.
func (s *Store) MigrateFromJSON(graphJSONPath, pagerankJSONPath string) error {
	data, err := os.ReadFile(graphJSONPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		slog.Warn("graph: migration read failed", "path", graphJSONPath, "err", err)
		return nil
	}

	var g jsonGraph
	if err := json.Unmarshal(data, &g); err != nil {
		slog.Warn("graph: migration parse failed", "path", graphJSONPath, "err", err)
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("graph: migrate: begin: %w", err)
	}
	for _, n := range g.Nodes {
		meta, _ := json.Marshal(n.Metadata)
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO nodes (id, type, label, content, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, n.ID, n.Type, n.Label, n.Content, string(meta), n.CreatedAt, n.UpdatedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("graph: migrate node %s: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO edges
				(source, target, relationship, weight, valid_from, valid_until, recorded_at, superseded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, e.Source, e.Target, e.Relationship, e.Weight, e.ValidFrom, e.ValidUntil, e.RecordedAt, e.SupersededAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("graph: migrate edge %s->%s: %w", e.Source, e.Target, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graph: migrate: commit: %w", err)
	}

	if pagerankJSONPath != "" {
		if err := s.migratePageRankJSON(pagerankJSONPath); err != nil {
			slog.Warn("graph: pagerank migration failed", "err", err)
		}
	}

	if err := os.Rename(graphJSONPath, graphJSONPath+".bak"); err != nil {
		slog.Warn("graph: rename migrated json failed", "path", graphJSONPath, "err", err)
	}
	return nil
}

func (s *Store) migratePageRankJSON(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var scores map[string]float64
	if err := json.Unmarshal(data, &scores); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.SavePageRank(scores); err != nil {
		return err
	}
	return os.Rename(path, path+".bak")
}

// NeedsMigration reports whether SQLite has no nodes yet but a legacy
// graph.json file is present — the condition under which the CLI's
// openStore calls MigrateFromJSON (Open itself does not migrate).
func (s *Store) NeedsMigration(graphJSONPath string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		return false, fmt.Errorf("graph: count nodes: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := os.Stat(graphJSONPath); err != nil {
		return false, nil
	}
	return true, nil
}

// ExportToJSON writes the current graph to graph.json (legacy format),
// useful for tooling that still expects the old file layout.
func ExportToJSON(s *Store, path string) error {
	nodes, err := s.AllNodes()
	if err != nil {
		return fmt.Errorf("graph: export: %w", err)
	}
	var edges []Edge
	if err := s.IterateEdges(func(e Edge) error {
		edges = append(edges, e)
		return nil
	}); err != nil {
		return fmt.Errorf("graph: export: %w", err)
	}

	g := jsonGraph{}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, jsonNode{
			ID: n.ID, Type: string(n.Type), Label: n.Label, Content: n.Content,
			Metadata: n.Metadata, CreatedAt: n.CreatedAt.Unix(), UpdatedAt: n.UpdatedAt.Unix(),
		})
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, jsonEdge{
			Source: e.Source, Target: e.Target, Relationship: e.Relationship, Weight: e.Weight,
			ValidFrom: unixPtr(e.ValidFrom), ValidUntil: unixPtr(e.ValidUntil),
			RecordedAt: unixPtr(e.RecordedAt), SupersededAt: unixPtr(e.SupersededAt),
		})
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("graph: export: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("graph: export: mkdir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}
