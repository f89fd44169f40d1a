// Package queryplan decomposes complex natural-language queries into
// weighted sub-queries, issues them concurrently, and fuses the results
// back into a single ranked list.
package queryplan

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sriinnu/chitragupta/internal/scoring"
)

const (
	complexityTokenThreshold = 8
	defaultMaxSubQueries     = 5
)

var conjunctionMarkers = []string{
	"and", "or", "but", "that", "which", "who", "where", "when", "while", "although",
}

var temporalMarkers = []string{
	"yesterday", "today", "tomorrow", "last week", "last month", "last year",
	"before", "after", "since", "ago", "recently",
}

var comparativeMarkers = []string{"vs", "compared to", "difference between"}

var causalMarkers = []string{"why", "because", "caused by", "led to", "due to"}

var quotedSpan = regexp.MustCompile(`"[^"]+"`)
var capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// SubQuery is one decomposed query with its fusion weight.
type SubQuery struct {
	Text   string
	Weight float64
}

// IsComplex reports whether query warrants decomposition, per the
// complexity gate: more than 8 tokens, a conjunction/temporal/
// comparative/causal marker, 2+ quoted spans, or 2+ capitalized
// non-initial words.
func IsComplex(query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) > complexityTokenThreshold {
		return true
	}
	lower := strings.ToLower(query)
	for _, m := range conjunctionMarkers {
		if containsWord(lower, m) {
			return true
		}
	}
	for _, m := range temporalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	for _, m := range comparativeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	for _, m := range causalMarkers {
		if containsWord(lower, m) {
			return true
		}
	}
	if len(quotedSpan.FindAllString(query, -1)) >= 2 {
		return true
	}
	if capCount := countCapitalizedNonInitial(query); capCount >= 2 {
		return true
	}
	return false
}

func countCapitalizedNonInitial(query string) int {
	fields := strings.Fields(query)
	count := 0
	for i, f := range fields {
		if i == 0 {
			continue
		}
		if capitalizedWord.MatchString(f) {
			count++
		}
	}
	return count
}

func containsWord(lower, word string) bool {
	for _, f := range strings.Fields(lower) {
		if strings.Trim(f, ".,;:!?\"'") == word {
			return true
		}
	}
	return false
}

// Decompose splits a complex query into sub-queries using the first
// matching pattern, in order: comparison ("X vs Y"), "difference between
// X and Y", causal split, comma-separated entity list, then a generic
// conjunction split. If query is not complex, or no pattern fires, the
// original query alone is returned with weight 1.0.
func Decompose(query string, maxSubQueries int) []SubQuery {
	if maxSubQueries <= 0 {
		maxSubQueries = defaultMaxSubQueries
	}
	if !IsComplex(query) {
		return []SubQuery{{Text: query, Weight: 1.0}}
	}

	var parts []string
	if p, ok := splitComparison(query); ok {
		parts = p
	} else if p, ok := splitDifferenceBetween(query); ok {
		parts = p
	} else if p, ok := splitCausal(query); ok {
		parts = p
	} else if p, ok := splitEntityList(query); ok {
		parts = p
	} else if p, ok := splitConjunctions(query); ok {
		parts = p
	}

	if len(parts) == 0 {
		return []SubQuery{{Text: query, Weight: 1.0}}
	}

	subQueries := []SubQuery{{Text: query, Weight: 1.0}}
	for i, p := range parts {
		weight := weightFor(i+1, p)
		subQueries = append(subQueries, SubQuery{Text: p, Weight: weight})
	}

	return clampSubQueries(subQueries, maxSubQueries)
}

func weightFor(index int, text string) float64 {
	base := 1.0 - 0.2*float64(index)
	if base < 0.4 {
		base = 0.4
	}
	tokens := scoring.Tokenize(text)
	switch {
	case len(tokens) >= 5:
		base += 0.10
	case len(tokens) >= 3:
		base += 0.05
	}
	return base
}

func clampSubQueries(subQueries []SubQuery, maxSubQueries int) []SubQuery {
	if len(subQueries) <= maxSubQueries {
		return subQueries
	}
	original := subQueries[0]
	rest := append([]SubQuery(nil), subQueries[1:]...)
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Weight > rest[j].Weight })
	rest = rest[:maxSubQueries-1]
	return append([]SubQuery{original}, rest...)
}

var comparisonPattern = regexp.MustCompile(`(?i)^(.+?)\s+(?:vs\.?|compared to)\s+(.+)$`)

func splitComparison(query string) ([]string, bool) {
	m := comparisonPattern.FindStringSubmatch(query)
	if m == nil {
		return nil, false
	}
	return []string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])}, true
}

var differencePattern = regexp.MustCompile(`(?i)difference between\s+(.+?)\s+and\s+(.+)$`)

func splitDifferenceBetween(query string) ([]string, bool) {
	m := differencePattern.FindStringSubmatch(query)
	if m == nil {
		return nil, false
	}
	return []string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])}, true
}

var causalSplitPattern = regexp.MustCompile(`(?i)\b(why|because|caused by|led to|due to)\b`)

func splitCausal(query string) ([]string, bool) {
	if !causalSplitPattern.MatchString(query) {
		return nil, false
	}
	segments := causalSplitPattern.Split(query, -1)
	var parts []string
	for _, s := range segments {
		s = strings.TrimSpace(strings.Trim(s, " ?.,"))
		if len(s) >= 3 && s != query {
			parts = append(parts, s)
		}
	}
	if len(parts) < 2 {
		return nil, false
	}
	return parts, true
}

var entityListPattern = regexp.MustCompile(`(?i)^(.+,\s*)+(?:and|or)\s+.+$`)

func splitEntityList(query string) ([]string, bool) {
	if !entityListPattern.MatchString(query) {
		return nil, false
	}
	normalized := regexp.MustCompile(`(?i)\s+(and|or)\s+`).ReplaceAllString(query, ", ")
	raw := strings.Split(normalized, ",")
	var entities []string
	for _, e := range raw {
		e = strings.TrimSpace(e)
		if e != "" {
			entities = append(entities, e)
		}
	}
	if len(entities) < 2 {
		return nil, false
	}
	return entities, true
}

func splitConjunctions(query string) ([]string, bool) {
	pattern := regexp.MustCompile(`(?i)\b(` + strings.Join(conjunctionMarkers, "|") + `)\b`)
	segments := pattern.Split(query, -1)
	var parts []string
	for _, s := range segments {
		s = strings.TrimSpace(strings.Trim(s, " ?.,"))
		if len(s) >= 3 && s != query {
			parts = append(parts, s)
		}
	}
	if len(parts) < 2 {
		return nil, false
	}
	return parts, true
}

// SearchFunc executes one sub-query and returns scored results keyed by
// node id; callers adapt their retrieval layer to this signature.
type SearchFunc func(ctx context.Context, query string) ([]Result, error)

// Result is one retrieval hit, independent of the underlying store.
type Result struct {
	ID      string
	Title   string
	Content string
	Score   float64
}

// Execute runs every sub-query concurrently via errgroup, bounded by the
// caller's context, and returns each sub-query's raw results alongside
// it.
func Execute(ctx context.Context, subQueries []SubQuery, search SearchFunc) ([]SubQueryResult, error) {
	results := make([]SubQueryResult, len(subQueries))
	g, ctx := errgroup.WithContext(ctx)

	for i, sq := range subQueries {
		i, sq := i, sq
		g.Go(func() error {
			res, err := search(ctx, sq.Text)
			if err != nil {
				return fmt.Errorf("queryplan: sub-query %q: %w", sq.Text, err)
			}
			results[i] = SubQueryResult{SubQuery: sq, Results: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SubQueryResult pairs a sub-query with its raw results.
type SubQueryResult struct {
	SubQuery SubQuery
	Results  []Result
}

// Fuse accumulates weight*score per node id across all sub-query
// results, keeping the highest-scoring occurrence as the representative
// record, and returns the top-K fused results descending by score.
func Fuse(results []SubQueryResult, topK int) []Result {
	type acc struct {
		record Result
		fused  float64
	}
	byID := make(map[string]*acc)

	for _, sr := range results {
		for _, r := range sr.Results {
			contribution := sr.SubQuery.Weight * r.Score
			a, ok := byID[r.ID]
			if !ok {
				byID[r.ID] = &acc{record: r, fused: contribution}
				continue
			}
			a.fused += contribution
			if r.Score > a.record.Score {
				a.record = r
			}
		}
	}

	out := make([]Result, 0, len(byID))
	for _, a := range byID {
		rec := a.record
		rec.Score = a.fused
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out
}

// queryStopWordOverrides excludes pronouns, auxiliaries, and wh-words from the
// general stop-word list, since those carry useful signal for
// gap-driven follow-up extraction.
var queryStopWordOverrides = map[string]bool{
	"i": false, "you": false, "he": false, "she": false, "it": false, "we": false, "they": false,
	"is": false, "are": false, "was": false, "were": false, "do": false, "does": false, "did": false,
	"who": false, "what": false, "where": false, "when": false, "why": false, "how": false,
}

func isQueryStopWord(token string) bool {
	if override, ok := queryStopWordOverrides[token]; ok {
		return override
	}
	return scoring.StopWords[token]
}

// GapFollowUps extracts key terms (length >= 3, not stop words) from the
// original query, and for each term not yet covered by any prior
// sub-query and not present in any returned title+content, emits a
// follow-up sub-query at weight 0.6. The number of follow-ups is capped
// so that len(previous)+len(followUps) <= maxSubQueries.
func GapFollowUps(originalQuery string, previous []SubQuery, gathered []Result, maxSubQueries int) []SubQuery {
	if maxSubQueries <= 0 {
		maxSubQueries = defaultMaxSubQueries
	}

	queried := make(map[string]bool, len(previous))
	for _, sq := range previous {
		queried[strings.ToLower(sq.Text)] = true
	}

	var corpus strings.Builder
	for _, r := range gathered {
		corpus.WriteString(strings.ToLower(r.Title))
		corpus.WriteByte(' ')
		corpus.WriteString(strings.ToLower(r.Content))
		corpus.WriteByte(' ')
	}
	haystack := corpus.String()

	budget := maxSubQueries - len(previous)
	if budget <= 0 {
		return nil
	}

	var followUps []SubQuery
	seen := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(originalQuery)) {
		token = strings.Trim(token, ".,;:!?\"'")
		if len(token) < 3 || isQueryStopWord(token) {
			continue
		}
		if seen[token] || queried[token] {
			continue
		}
		seen[token] = true
		if strings.Contains(haystack, token) {
			continue
		}
		followUps = append(followUps, SubQuery{Text: token, Weight: 0.6})
		if len(followUps) >= budget {
			break
		}
	}
	return followUps
}
