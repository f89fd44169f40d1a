package pagerank

import "math"

// maxPropagationFactor bounds the number of push-residual steps per
// edge mutation at 20*N, per §4.E.
const maxPropagationFactor = 20

// Engine maintains PageRank scores incrementally as edges are added and
// removed, using push-residual propagation instead of recomputing from
// scratch. Callers must serialize calls to a single Engine.
type Engine struct {
	damping      float64
	epsilon      float64
	ranks        map[string]float64
	residual     map[string]float64
	outDegree    map[string]int
	outNeighbors map[string][]string
}

// NewEngine creates an incremental engine with the given damping factor
// (0 uses DefaultDamping).
func NewEngine(damping float64) *Engine {
	if damping == 0 {
		damping = DefaultDamping
	}
	return &Engine{
		damping:      damping,
		epsilon:      DefaultEpsilon,
		ranks:        make(map[string]float64),
		residual:     make(map[string]float64),
		outDegree:    make(map[string]int),
		outNeighbors: make(map[string][]string),
	}
}

// EnsureNode registers id if unseen, initializing its rank to 1/N using
// the node count after insertion.
func (e *Engine) EnsureNode(id string) {
	if _, ok := e.ranks[id]; ok {
		return
	}
	oldN := float64(len(e.ranks))
	newN := oldN + 1

	if oldN > 0 {
		scale := oldN / newN
		for k := range e.ranks {
			e.ranks[k] *= scale
		}
	}

	e.outDegree[id] = 0
	e.ranks[id] = 1.0 / newN
}

// Rank returns the current score for id (0 if unknown).
func (e *Engine) Rank(id string) float64 {
	return e.ranks[id]
}

// Ranks returns a copy of all current scores.
func (e *Engine) Ranks() map[string]float64 {
	out := make(map[string]float64, len(e.ranks))
	for k, v := range e.ranks {
		out[k] = v
	}
	return out
}

// Nodes returns the tracked node ids.
func (e *Engine) Nodes() []string {
	out := make([]string, 0, len(e.ranks))
	for k := range e.ranks {
		out = append(out, k)
	}
	return out
}

// AddEdge records a new edge u->v and injects the resulting residual,
// then propagates it.
func (e *Engine) AddEdge(u, v string) {
	e.EnsureNode(u)
	e.EnsureNode(v)

	oldNeighbors := append([]string(nil), e.outNeighbors[u]...)
	lOld := len(oldNeighbors)
	lNew := lOld + 1

	e.outNeighbors[u] = append(e.outNeighbors[u], v)
	e.outDegree[u] = lNew

	prU := e.ranks[u]
	e.residual[v] += e.damping * prU / float64(lNew)

	if lOld > 0 {
		delta := e.damping * prU * (1.0/float64(lNew) - 1.0/float64(lOld))
		for _, w := range oldNeighbors {
			if w == v {
				continue
			}
			e.residual[w] += delta
		}
	}

	e.propagate()
}

// RemoveEdge removes one occurrence of edge u->v and injects the
// opposite-signed residual adjustment, then propagates it. A no-op if
// the edge is not present.
func (e *Engine) RemoveEdge(u, v string) {
	neighbors, ok := e.outNeighbors[u]
	if !ok {
		return
	}
	idx := -1
	for i, w := range neighbors {
		if w == v {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	lBefore := len(neighbors)
	remaining := append(append([]string(nil), neighbors[:idx]...), neighbors[idx+1:]...)
	lAfter := len(remaining)
	e.outNeighbors[u] = remaining
	e.outDegree[u] = lAfter

	prU := e.ranks[u]
	e.residual[v] -= e.damping * prU / float64(lBefore)

	if lAfter > 0 {
		delta := e.damping * prU * (1.0/float64(lAfter) - 1.0/float64(lBefore))
		for _, w := range remaining {
			e.residual[w] += delta
		}
	}

	e.propagate()
}

// propagate repeats push-residual relaxation, picking the node with the
// largest absolute pending residual each step, until the residual falls
// below epsilon or the 20*N step budget is exhausted.
func (e *Engine) propagate() {
	n := len(e.ranks)
	if n == 0 {
		return
	}
	limit := maxPropagationFactor * n

	for step := 0; step < limit; step++ {
		var bestID string
		bestAbs := 0.0
		for id, r := range e.residual {
			if a := math.Abs(r); a > bestAbs {
				bestAbs = a
				bestID = id
			}
		}
		if bestAbs < e.epsilon {
			return
		}

		r := e.residual[bestID]
		delete(e.residual, bestID)
		e.ranks[bestID] += r

		deg := e.outDegree[bestID]
		if deg == 0 {
			continue
		}
		share := e.damping * r / float64(deg)
		for _, w := range e.outNeighbors[bestID] {
			e.residual[w] += share
		}
	}
}

// Recompute discards incremental state and runs full power iteration
// from scratch over the given adjacency, the escape hatch for when
// accumulated incremental drift needs clearing.
func (e *Engine) Recompute(adjacency map[string][]string, opts Options) int {
	nodes := e.Nodes()
	ranks, iterations := Compute(nodes, adjacency, opts)

	e.ranks = ranks
	e.residual = make(map[string]float64)
	e.outDegree = make(map[string]int, len(nodes))
	e.outNeighbors = make(map[string][]string, len(nodes))
	for _, u := range nodes {
		targets := append([]string(nil), adjacency[u]...)
		e.outNeighbors[u] = targets
		e.outDegree[u] = len(targets)
	}
	if opts.Damping != 0 {
		e.damping = opts.Damping
	}
	return iterations
}
