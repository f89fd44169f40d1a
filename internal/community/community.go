// Package community implements a Leiden-style greedy modularity partition
// over an undirected weighted graph, plus bridge-node detection.
package community

import (
	"sort"
)

const (
	DefaultResolution       = 1.0
	DefaultMaxIterations    = 10
	DefaultMinCommunitySize = 1
)

// Options configures a partition run.
type Options struct {
	Resolution       float64 // default 1.0; >1 fragments, <1 merges
	MaxIterations    int     // default 10
	MinCommunitySize int     // default 1; smaller communities get merged
	Seed             int64   // deterministic tie-breaking
}

func (o Options) withDefaults() Options {
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MinCommunitySize == 0 {
		o.MinCommunitySize = DefaultMinCommunitySize
	}
	return o
}

// Community describes one detected community.
type Community struct {
	ID              string
	Members         []string
	InternalDensity float64
	Level           int
}

// Result is the output of a partition run.
type Result struct {
	Communities   map[string]string // node id -> community id
	CommunityList []Community
	Modularity    float64
	Iterations    int
}

// Graph is an undirected weighted adjacency: node id -> neighbor id ->
// edge weight. Callers are expected to symmetrize directed graphs before
// calling Partition (an edge u-v contributes to both u's and v's rows).
type Graph map[string]map[string]float64

// Partition runs greedy local-move modularity optimization (the Leiden
// "move nodes" phase, without the refinement/aggregation phases since a
// single flat level covers this corpus's graph sizes) until modularity
// stops improving or maxIterations is reached.
func Partition(graph Graph, opts Options) Result {
	opts = opts.withDefaults()

	nodes := sortedNodes(graph)
	if len(nodes) == 0 {
		return Result{Communities: map[string]string{}, Modularity: 0}
	}

	totalWeight := totalEdgeWeight(graph)
	comm := make(map[string]string, len(nodes))
	for _, n := range nodes {
		comm[n] = n
	}

	if totalWeight == 0 {
		return finalize(graph, comm, nodes, opts, 0)
	}

	degree := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		for _, w := range graph[n] {
			degree[n] += w
		}
	}

	prevModularity := modularity(graph, comm, degree, totalWeight, opts.Resolution)
	iterations := 0
	rng := newRNG(opts.Seed)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		iterations = iter + 1
		improved := false

		order := rng.shuffle(nodes)
		for _, n := range order {
			best := comm[n]
			bestGain := 0.0
			currentComm := comm[n]

			neighborComms := map[string]bool{currentComm: true}
			for neighbor := range graph[n] {
				neighborComms[comm[neighbor]] = true
			}

			for candidate := range neighborComms {
				if candidate == currentComm {
					continue
				}
				comm[n] = candidate
				gain := modularity(graph, comm, degree, totalWeight, opts.Resolution) - prevModularity
				if gain > bestGain {
					bestGain = gain
					best = candidate
				}
				comm[n] = currentComm
			}

			if best != currentComm {
				comm[n] = best
				newMod := modularity(graph, comm, degree, totalWeight, opts.Resolution)
				if newMod > prevModularity {
					prevModularity = newMod
					improved = true
				} else {
					comm[n] = currentComm
				}
			}
		}

		if !improved {
			break
		}
	}

	mergeSmallCommunities(graph, comm, opts.MinCommunitySize)
	finalMod := modularity(graph, comm, degree, totalWeight, opts.Resolution)

	return finalize(graph, comm, nodes, opts, iterations, finalMod)
}

func finalize(graph Graph, comm map[string]string, nodes []string, opts Options, iterations int, mod ...float64) Result {
	relabeled := relabelCommunities(comm, nodes)
	list := buildCommunityList(graph, relabeled)

	m := 0.0
	if len(mod) > 0 {
		m = mod[0]
	}

	return Result{
		Communities:   relabeled,
		CommunityList: list,
		Modularity:    m,
		Iterations:    iterations,
	}
}

// relabelCommunities renames community ids to "c0", "c1", ... in a
// deterministic order (by the sorted order of each community's smallest
// member id), so identical partitions produce identical ids.
func relabelCommunities(comm map[string]string, nodes []string) map[string]string {
	groups := make(map[string][]string)
	for _, n := range nodes {
		groups[comm[n]] = append(groups[comm[n]], n)
	}

	type group struct {
		original string
		min      string
	}
	var ordered []group
	for orig, members := range groups {
		sort.Strings(members)
		ordered = append(ordered, group{original: orig, min: members[0]})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].min < ordered[j].min })

	relabel := make(map[string]string, len(ordered))
	for i, g := range ordered {
		relabel[g.original] = idFor(i)
	}

	out := make(map[string]string, len(comm))
	for n, c := range comm {
		out[n] = relabel[c]
	}
	return out
}

func idFor(i int) string {
	return "c" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func buildCommunityList(graph Graph, comm map[string]string) []Community {
	members := make(map[string][]string)
	for n, c := range comm {
		members[c] = append(members[c], n)
	}

	var out []Community
	for c, ms := range members {
		sort.Strings(ms)
		out = append(out, Community{
			ID:              c,
			Members:         ms,
			InternalDensity: internalDensity(graph, ms),
			Level:           0,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func internalDensity(graph Graph, members []string) float64 {
	if len(members) <= 1 {
		return 0
	}
	inSet := make(map[string]bool, len(members))
	for _, m := range members {
		inSet[m] = true
	}
	var internalEdges float64
	for _, n := range members {
		for neighbor, w := range graph[n] {
			if inSet[neighbor] {
				internalEdges += w
			}
		}
	}
	internalEdges /= 2
	possible := float64(len(members)*(len(members)-1)) / 2
	if possible == 0 {
		return 0
	}
	return internalEdges / possible
}

func totalEdgeWeight(graph Graph) float64 {
	var sum float64
	for _, neighbors := range graph {
		for _, w := range neighbors {
			sum += w
		}
	}
	return sum / 2
}

// modularity computes Newman-Girvan modularity with the resolution
// parameter scaling the null-model term: Q = (1/2m) * sum_uv [A_uv -
// gamma*(k_u*k_v)/(2m)] * delta(c_u, c_v).
func modularity(graph Graph, comm map[string]string, degree map[string]float64, totalWeight, resolution float64) float64 {
	if totalWeight == 0 {
		return 0
	}
	twoM := 2 * totalWeight
	var q float64
	for u, neighbors := range graph {
		for v, w := range neighbors {
			if comm[u] != comm[v] {
				continue
			}
			q += w - resolution*(degree[u]*degree[v])/twoM
		}
	}
	return q / twoM
}

func mergeSmallCommunities(graph Graph, comm map[string]string, minSize int) {
	if minSize <= 1 {
		return
	}
	sizes := make(map[string]int)
	for _, c := range comm {
		sizes[c]++
	}

	for n, c := range comm {
		if sizes[c] >= minSize {
			continue
		}
		// merge into the neighbor community with the strongest total
		// edge weight to n.
		best := c
		bestWeight := -1.0
		for neighbor, w := range graph[n] {
			nc := comm[neighbor]
			if nc == c {
				continue
			}
			if w > bestWeight {
				bestWeight = w
				best = nc
			}
		}
		if best != c {
			sizes[c]--
			sizes[best]++
			comm[n] = best
		}
	}
}

func sortedNodes(graph Graph) []string {
	out := make([]string, 0, len(graph))
	for n := range graph {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AnnotateCommunities returns a node id -> community id map formatted
// for writing into a node's metadata (e.g. as a "communityId" field).
func AnnotateCommunities(result Result) map[string]string {
	out := make(map[string]string, len(result.Communities))
	for n, c := range result.Communities {
		out[n] = c
	}
	return out
}

// FindBridgeNodes returns nodes whose neighbors span at least k distinct
// communities, sorted by id.
func FindBridgeNodes(graph Graph, result Result, k int) []string {
	var bridges []string
	for n, neighbors := range graph {
		seen := make(map[string]bool)
		for neighbor := range neighbors {
			seen[result.Communities[neighbor]] = true
		}
		if len(seen) >= k {
			bridges = append(bridges, n)
		}
	}
	sort.Strings(bridges)
	return bridges
}

// rng is a tiny deterministic linear-congruential generator used only to
// shuffle move order for a given seed, not for anything security
// sensitive.
type rng struct {
	state uint64
}

func newRNG(seed int64) *rng {
	s := uint64(seed)
	if s == 0 {
		s = 0x9e3779b97f4a7c15
	}
	return &rng{state: s}
}

func (r *rng) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

func (r *rng) shuffle(nodes []string) []string {
	out := append([]string(nil), nodes...)
	for i := len(out) - 1; i > 0; i-- {
		j := int(r.next() % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
