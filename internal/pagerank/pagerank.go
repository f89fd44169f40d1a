// Package pagerank implements full power-iteration PageRank (Jacobi and
// Gauss-Seidel variants) plus an incremental push-residual engine that
// maintains scores under continuous edge insertion/removal.
package pagerank

import (
	"math"

	"github.com/sriinnu/chitragupta/internal/scoring"
)

const (
	DefaultDamping     = 0.85
	DefaultEpsilon     = 1e-6
	DefaultMaxIterations = 150
)

// Variant selects the power-iteration update rule.
type Variant int

const (
	// GaussSeidel updates a node's value in place, so later nodes in the
	// same sweep see already-updated neighbor values. Fewer iterations to
	// converge, and the default.
	GaussSeidel Variant = iota
	// Jacobi computes every node's new value from the previous sweep's
	// values, synchronously.
	Jacobi
)

// Options configures a full PageRank computation.
type Options struct {
	Damping       float64 // default 0.85
	Bias          map[string]float64 // nil = uniform 1/N
	Variant       Variant
	Epsilon       float64 // default 1e-6
	MaxIterations int     // default 150
}

func (o Options) withDefaults() Options {
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Compute runs full PageRank over nodes with the given out-adjacency
// (node id -> list of target ids, possibly with duplicates for
// multi-edges), returning the score map and the iteration count it took
// to converge.
func Compute(nodes []string, adjacency map[string][]string, opts Options) (map[string]float64, int) {
	opts = opts.withDefaults()
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}, 0
	}

	bias := opts.Bias
	if bias == nil {
		bias = uniformBias(nodes)
	} else {
		bias = normalizeBias(nodes, bias)
	}

	outDegree := make(map[string]int, n)
	for _, id := range nodes {
		outDegree[id] = len(adjacency[id])
	}
	inLinks := make(map[string][]string, n)
	for _, u := range nodes {
		for _, v := range adjacency[u] {
			inLinks[v] = append(inLinks[v], u)
		}
	}

	ranks := make(map[string]float64, n)
	for _, id := range nodes {
		ranks[id] = 1.0 / float64(n)
	}

	switch opts.Variant {
	case Jacobi:
		return computeJacobi(nodes, inLinks, outDegree, bias, ranks, opts)
	default:
		return computeGaussSeidel(nodes, inLinks, outDegree, bias, ranks, opts)
	}
}

func danglingSum(nodes []string, outDegree map[string]int, ranks map[string]float64) float64 {
	var sum float64
	for _, id := range nodes {
		if outDegree[id] == 0 {
			sum += ranks[id]
		}
	}
	return sum
}

func computeJacobi(nodes []string, inLinks map[string][]string, outDegree map[string]int, bias, ranks map[string]float64, opts Options) (map[string]float64, int) {
	n := float64(len(nodes))
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		dangling := danglingSum(nodes, outDegree, ranks)
		next := make(map[string]float64, len(nodes))
		maxDelta := 0.0
		for _, v := range nodes {
			var inSum float64
			for _, u := range inLinks[v] {
				inSum += ranks[u] / float64(outDegree[u])
			}
			val := (1-opts.Damping)*bias[v] + opts.Damping*inSum + opts.Damping*dangling/n
			if d := math.Abs(val - ranks[v]); d > maxDelta {
				maxDelta = d
			}
			next[v] = val
		}
		ranks = next
		if maxDelta < opts.Epsilon {
			return ranks, iter
		}
	}
	return ranks, opts.MaxIterations
}

func computeGaussSeidel(nodes []string, inLinks map[string][]string, outDegree map[string]int, bias, ranks map[string]float64, opts Options) (map[string]float64, int) {
	n := float64(len(nodes))
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		dangling := danglingSum(nodes, outDegree, ranks)
		maxDelta := 0.0
		for _, v := range nodes {
			var inSum float64
			for _, u := range inLinks[v] {
				inSum += ranks[u] / float64(outDegree[u])
			}
			val := (1-opts.Damping)*bias[v] + opts.Damping*inSum + opts.Damping*dangling/n
			if d := math.Abs(val - ranks[v]); d > maxDelta {
				maxDelta = d
			}
			ranks[v] = val
		}
		if maxDelta < opts.Epsilon {
			return ranks, iter
		}
	}
	return ranks, opts.MaxIterations
}

func uniformBias(nodes []string) map[string]float64 {
	bias := make(map[string]float64, len(nodes))
	v := 1.0 / float64(len(nodes))
	for _, id := range nodes {
		bias[id] = v
	}
	return bias
}

func normalizeBias(nodes []string, raw map[string]float64) map[string]float64 {
	var sum float64
	for _, id := range nodes {
		sum += raw[id]
	}
	if sum == 0 {
		return uniformBias(nodes)
	}
	out := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		out[id] = raw[id] / sum
	}
	return out
}

// TopicBias computes an L1-normalized bag-of-words cosine similarity
// vector between topic and each node's content, falling back to uniform
// if every similarity is zero.
func TopicBias(nodes []string, content map[string]string, topic string) map[string]float64 {
	topicFreq := termFreq(scoring.Tokenize(topic))
	raw := make(map[string]float64, len(nodes))
	var anyNonzero bool
	for _, id := range nodes {
		docFreq := termFreq(scoring.Tokenize(content[id]))
		sim := bagOfWordsCosine(topicFreq, docFreq)
		raw[id] = sim
		if sim > 0 {
			anyNonzero = true
		}
	}
	if !anyNonzero {
		return uniformBias(nodes)
	}
	return normalizeBias(nodes, raw)
}

func termFreq(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

func bagOfWordsCosine(a, b map[string]int) float64 {
	var dot, normA, normB float64
	for t, fa := range a {
		normA += float64(fa) * float64(fa)
		if fb, ok := b[t]; ok {
			dot += float64(fa) * float64(fb)
		}
	}
	for _, fb := range b {
		normB += float64(fb) * float64(fb)
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
