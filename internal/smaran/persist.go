package smaran

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sriinnu/chitragupta/internal/codec"
)

// Save writes every entry to one markdown file per entry under dir,
// named by id. Frontmatter carries the §3 fields; the body is the entry
// content itself, matching the teacher's frontmatter-plus-body file shape
// generalized to a writable format.
func (s *Store) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("smaran: save: mkdir: %w", err)
	}
	for _, e := range s.entries {
		meta := map[string]any{
			"id":                e.ID,
			"category":          string(e.Category),
			"source":            string(e.Source),
			"confidence":        e.Confidence,
			"tags":              e.Tags,
			"decayHalfLifeDays": e.DecayHalfLifeDays,
			"createdAt":         e.CreatedAt.UTC().Format(time.RFC3339),
			"updatedAt":         e.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if e.SessionID != "" {
			meta["sessionId"] = e.SessionID
		}
		encoded, err := codec.Encode(meta, e.Content+"\n")
		if err != nil {
			return fmt.Errorf("smaran: save: encode %s: %w", e.ID, err)
		}
		path := filepath.Join(dir, e.ID+".md")
		if err := os.WriteFile(path, []byte(encoded), 0644); err != nil {
			return fmt.Errorf("smaran: save: write %s: %w", e.ID, err)
		}
	}
	return nil
}

// Load reads every *.md file in dir into a fresh Store. Files that fail to
// parse are logged and skipped — a malformed entry never blocks loading
// the rest of the store.
func Load(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("smaran: load: read dir: %w", err)
	}

	s := NewStore()
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("smaran: read entry failed", "path", path, "err", err)
			continue
		}
		meta, body, err := codec.Decode(data)
		if err != nil || meta == nil {
			slog.Warn("smaran: decode entry failed", "path", path, "err", err)
			continue
		}
		e, err := entryFromMeta(meta, body)
		if err != nil {
			slog.Warn("smaran: reconstruct entry failed", "path", path, "err", err)
			continue
		}
		s.entries = append(s.entries, e)
	}
	return s, nil
}

func entryFromMeta(meta map[string]any, body string) (*Entry, error) {
	id, _ := meta["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("missing id")
	}
	created, err := parseTime(meta["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	updated, err := parseTime(meta["updatedAt"])
	if err != nil {
		return nil, fmt.Errorf("updatedAt: %w", err)
	}
	e := &Entry{
		ID:                id,
		Content:           strings.TrimRight(body, "\n"),
		Category:          Category(asString(meta["category"])),
		Source:            Source(asString(meta["source"])),
		Confidence:        asFloat(meta["confidence"]),
		Tags:              asStringSlice(meta["tags"]),
		DecayHalfLifeDays: asFloat(meta["decayHalfLifeDays"]),
		CreatedAt:         created,
		UpdatedAt:         updated,
		SessionID:         asString(meta["sessionId"]),
	}
	return e, nil
}

func parseTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("not a string: %v", v)
	}
	return time.Parse(time.RFC3339, s)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
