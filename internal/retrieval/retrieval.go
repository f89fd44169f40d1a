// Package retrieval implements hybrid cosine/PageRank/BM25 scoring over
// graph nodes, one-hop neighbor expansion for context windows, and
// semantic chunking for long content.
package retrieval

import (
	"sort"

	"github.com/sriinnu/chitragupta/internal/embedding"
	"github.com/sriinnu/chitragupta/internal/scoring"
)

const (
	DefaultAlpha = 0.60 // cosine weight
	DefaultBeta  = 0.25 // pagerank weight
	DefaultGamma = 0.15 // bm25-lite weight
)

// Node is the minimal view of a graph node the scorer needs.
type Node struct {
	ID        string
	Label     string
	Content   string
	Embedding []float32
}

// Weights configures the hybrid score's mixing coefficients.
type Weights struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

func (w Weights) withDefaults() Weights {
	if w.Alpha == 0 && w.Beta == 0 && w.Gamma == 0 {
		return Weights{Alpha: DefaultAlpha, Beta: DefaultBeta, Gamma: DefaultGamma}
	}
	return w
}

// Scored is one ranked result.
type Scored struct {
	Node  Node
	Score float64
}

// Rank scores every node against the query embedding and text, mixing
// in PageRank scores normalized by the observed maximum, and returns the
// top-K results descending by score.
func Rank(nodes []Node, queryEmbedding []float32, queryText string, pageranks map[string]float64, weights Weights, topK int) []Scored {
	weights = weights.withDefaults()

	maxPR := 0.0
	for _, pr := range pageranks {
		if pr > maxPR {
			maxPR = pr
		}
	}

	scored := make([]Scored, 0, len(nodes))
	for _, n := range nodes {
		cos := 0.0
		if len(n.Embedding) > 0 && len(queryEmbedding) > 0 {
			c := float64(embedding.Cosine(queryEmbedding, n.Embedding))
			if c > 0 {
				cos = c
			}
		}

		pr := 0.0
		if maxPR > 0 {
			pr = pageranks[n.ID] / maxPR
		}

		bm25 := scoring.BM25Lite(queryText, n.Content+" "+n.Label)

		score := weights.Alpha*cos + weights.Beta*pr + weights.Gamma*bm25
		scored = append(scored, Scored{Node: n, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

// Direction controls which edges ExpandNeighbors follows.
type Direction int

const (
	DirectionOut Direction = iota
	DirectionIn
	DirectionBoth
)

// ExpandNeighbors returns id plus its one-hop neighbors per direction,
// used to build "context around v" before ranking.
func ExpandNeighbors(id string, outEdges, inEdges map[string][]string, dir Direction) []string {
	seen := map[string]bool{id: true}
	out := []string{id}

	add := func(ids []string) {
		for _, n := range ids {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	if dir == DirectionOut || dir == DirectionBoth {
		add(outEdges[id])
	}
	if dir == DirectionIn || dir == DirectionBoth {
		add(inEdges[id])
	}
	return out
}
