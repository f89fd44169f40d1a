// Package entity extracts named entities from text: an LLM-primary pass
// with a keyword-frequency fallback, enriched by a heuristic NER pass for
// file paths, errors, tool names, and similar code-adjacent mentions.
package entity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sriinnu/chitragupta/internal/scoring"
)

// Type is the closed tagged variant entities are classified into,
// matching the graph store's node-type convention.
type Type string

const (
	TypeConcept      Type = "concept"
	TypePerson       Type = "person"
	TypeOrganization Type = "organization"
	TypeFile         Type = "file"
	TypeTool         Type = "tool"
)

// Entity is one extracted mention.
type Entity struct {
	Name        string
	Type        Type
	Description string
}

// ErrParseError indicates a generation provider response could not be
// parsed into the expected shape; callers treat it as an empty result
// rather than propagating it, per the CORE's error-handling design.
var ErrParseError = fmt.Errorf("entity: parse error")

const (
	minKeywordLength = 5
	minKeywordCount  = 2
	maxKeywords      = 20
)

// Extract runs the LLM-primary path through gen (nil uses the keyword
// fallback directly), then always runs NER enrichment and merges it in
// case-insensitively by name.
func Extract(text string, gen Generator) []Entity {
	var primary []Entity
	if gen != nil {
		if llmEntities, err := extractViaLLM(text, gen); err == nil && len(llmEntities) > 0 {
			primary = llmEntities
		}
	}
	if primary == nil {
		primary = extractKeywords(text)
	}

	ner := extractNER(text)
	return mergeEntities(primary, ner)
}

func extractViaLLM(text string, gen Generator) ([]Entity, error) {
	prompt := fmt.Sprintf(
		"Extract named entities from the following text as a JSON array of "+
			"objects with \"name\", \"type\", and \"description\" fields. "+
			"Respond with only the JSON array.\n\nText:\n%s", text)

	resp, err := gen.Generate(prompt)
	if err != nil {
		return nil, fmt.Errorf("entity: generate: %w", err)
	}

	block, ok := firstJSONArray(resp)
	if !ok {
		return nil, ErrParseError
	}

	var raw []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}

	entities := make([]Entity, 0, len(raw))
	for _, r := range raw {
		name := strings.ToLower(strings.TrimSpace(r.Name))
		if name == "" {
			continue
		}
		typ := Type(r.Type)
		if typ == "" {
			typ = TypeConcept
		}
		entities = append(entities, Entity{Name: name, Type: typ, Description: r.Description})
	}
	return entities, nil
}

// firstJSONArray returns the first top-level "[ ... ]" block in s.
func firstJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// extractKeywords tokenizes text, keeps terms of length >= 5 appearing
// >= 2 times, and returns the top 20 by frequency, per §4.C.
func extractKeywords(text string) []Entity {
	tokens := scoring.Tokenize(text)
	freq := make(map[string]int)
	for _, t := range tokens {
		if len(t) < minKeywordLength {
			continue
		}
		freq[t]++
	}

	type kv struct {
		term  string
		count int
	}
	var candidates []kv
	for term, count := range freq {
		if count >= minKeywordCount {
			candidates = append(candidates, kv{term, count})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}

	out := make([]Entity, len(candidates))
	for i, c := range candidates {
		out[i] = Entity{
			Name:        c.term,
			Type:        TypeConcept,
			Description: fmt.Sprintf("mentioned %d times", c.count),
		}
	}
	return out
}

// mergeEntities combines primary and ner, deduplicating by lowercased
// name (primary wins on conflict, since it typically carries a richer
// description from the generation provider).
func mergeEntities(primary, ner []Entity) []Entity {
	seen := make(map[string]bool, len(primary)+len(ner))
	out := make([]Entity, 0, len(primary)+len(ner))
	for _, e := range primary {
		key := strings.ToLower(e.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	for _, e := range ner {
		key := strings.ToLower(e.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
