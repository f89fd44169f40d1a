// Package scoring implements the dense/sparse scoring primitives shared
// by the retrieval engine, query planner, and memory store: tokenization,
// cosine similarity, a lightweight BM25 variant, and token estimation.
package scoring

import (
	"math"
	"strings"
)

// StopWords is the exact stop-word set from spec §4.A. Changing it
// affects BM25 recall behavior across the whole system, so it is part of
// the contract, not an implementation detail — coordinate test updates
// before touching it.
var StopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "is": true, "it": true,
	"this": true, "that": true, "was": true, "are": true, "be": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"not": true, "no": true,
}

// Tokenize lowercases, strips non-alphanumeric runes to spaces, splits on
// whitespace, drops tokens shorter than 2 characters, and drops stop words.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if StopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Cosine returns the cosine similarity between two equal-length vectors,
// or 0 if either norm is 0 or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// BM25Lite implements the spec's simplified BM25 variant: for each query
// token present in doc, add 1+ln(1+tf); scale by a match-ratio term;
// normalize by query length; clamp to [0,1].
func BM25Lite(query, doc string) float64 {
	qTokens := Tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	docTF := termFreq(Tokenize(doc))

	var score float64
	matched := 0
	seen := make(map[string]bool, len(qTokens))
	for _, qt := range qTokens {
		if seen[qt] {
			continue
		}
		seen[qt] = true
		tf, ok := docTF[qt]
		if !ok {
			continue
		}
		matched++
		score += 1 + math.Log(1+float64(tf))
	}

	matchRatio := 0.5 + 0.5*(float64(matched)/float64(len(qTokens)))
	score *= matchRatio
	score /= float64(len(qTokens))

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func termFreq(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// EstimateTokens approximates token count as ceil(len(text)/4).
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
