package entity

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	filePathPattern = regexp.MustCompile(`\b[\w./-]+\.(go|py|js|ts|tsx|jsx|rs|java|rb|c|cpp|h|hpp|md|yaml|yml|json|toml|sql)\b`)
	errorPattern     = regexp.MustCompile(`\b\w*[Ee]rror\b[:]?\s*[^\n.]{0,60}`)
	decisionPattern  = regexp.MustCompile(`(?i)\b(decided to|chose to|going with|switched to)\s+([a-zA-Z0-9 _-]{3,40})`)
	actionPattern    = regexp.MustCompile(`(?i)\b(fixed|implemented|refactored|deployed|migrated)\s+([a-zA-Z0-9 _-]{3,40})`)
)

// techNames and toolNames are small closed dictionaries of well-known
// technologies/tools worth tagging on sight; they are intentionally not
// exhaustive — this is a heuristic enrichment pass, not a taxonomy.
var techNames = []string{
	"go", "golang", "python", "typescript", "javascript", "rust", "sqlite",
	"postgres", "redis", "docker", "kubernetes", "react", "graphql",
}

var toolNames = []string{
	"git", "make", "npm", "cargo", "pytest", "cobra", "ollama",
}

var orgSuffixes = []string{" inc", " corp", " llc", " ltd", " labs"}

// extractNER runs the heuristic regex/dictionary pass over text and
// returns entities with types mapped onto the closed Type set.
func extractNER(text string) []Entity {
	var out []Entity
	seen := make(map[string]bool)

	add := func(name string, typ Type, desc string) {
		key := strings.ToLower(name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Entity{Name: key, Type: typ, Description: desc})
	}

	for _, m := range filePathPattern.FindAllString(text, -1) {
		add(m, TypeFile, "file path mention")
	}
	for _, m := range errorPattern.FindAllString(text, -1) {
		add(strings.TrimSpace(m), TypeConcept, "error mention")
	}
	for _, m := range decisionPattern.FindAllStringSubmatch(text, -1) {
		add(strings.TrimSpace(m[2]), TypeConcept, "decision mention")
	}
	for _, m := range actionPattern.FindAllStringSubmatch(text, -1) {
		add(strings.TrimSpace(m[2]), TypeConcept, "action mention")
	}

	lower := strings.ToLower(text)
	for _, tech := range techNames {
		if containsWord(lower, tech) {
			add(tech, TypeConcept, "technology mention")
		}
	}
	for _, tool := range toolNames {
		if containsWord(lower, tool) {
			add(tool, TypeTool, "tool mention")
		}
	}

	for _, word := range strings.Fields(text) {
		trimmed := strings.Trim(word, ".,;:!?()[]{}\"'")
		lowerWord := strings.ToLower(trimmed)
		for _, suffix := range orgSuffixes {
			if strings.HasSuffix(lowerWord, strings.TrimSpace(suffix)) {
				add(trimmed, TypeOrganization, fmt.Sprintf("organization suffix %q", strings.TrimSpace(suffix)))
			}
		}
	}

	return out
}

func containsWord(lowerText, word string) bool {
	idx := strings.Index(lowerText, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isWordByte(lowerText[idx-1])
	after := idx+len(word) == len(lowerText) || !isWordByte(lowerText[idx+len(word)])
	return before && after
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
