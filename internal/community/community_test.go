package community

import "testing"

func symmetrize(edges map[string]map[string]float64) Graph {
	g := make(Graph)
	for u, neighbors := range edges {
		if g[u] == nil {
			g[u] = make(map[string]float64)
		}
		for v, w := range neighbors {
			g[u][v] = w
			if g[v] == nil {
				g[v] = make(map[string]float64)
			}
			g[v][u] = w
		}
	}
	return g
}

func TestEmptyGraphYieldsZeroCommunities(t *testing.T) {
	result := Partition(Graph{}, Options{})
	if len(result.Communities) != 0 {
		t.Fatalf("expected no communities, got %v", result.Communities)
	}
	if result.Modularity != 0 {
		t.Fatalf("expected zero modularity, got %v", result.Modularity)
	}
}

// S1: two dense cliques joined by a single bridge edge should end up in
// distinct communities.
func TestTwoCliquesWithBridgeSplitIntoDistinctCommunities(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a1": {"a2": 1, "a3": 1, "b1": 0.1},
		"a2": {"a3": 1},
		"b1": {"b2": 1, "b3": 1},
		"b2": {"b3": 1},
	})

	result := Partition(g, Options{Seed: 42})

	if result.Communities["a1"] != result.Communities["a2"] || result.Communities["a2"] != result.Communities["a3"] {
		t.Errorf("expected clique A nodes in one community, got %+v", result.Communities)
	}
	if result.Communities["b1"] != result.Communities["b2"] || result.Communities["b2"] != result.Communities["b3"] {
		t.Errorf("expected clique B nodes in one community, got %+v", result.Communities)
	}
	if result.Communities["a1"] == result.Communities["b1"] {
		t.Errorf("expected clique A and B in distinct communities, got %+v", result.Communities)
	}
}

func TestSameSeedProducesIdenticalPartition(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a": {"b": 1, "c": 1},
		"b": {"c": 1},
		"d": {"e": 1, "f": 1},
		"e": {"f": 1},
		"c": {"d": 0.2},
	})

	r1 := Partition(g, Options{Seed: 7})
	r2 := Partition(g, Options{Seed: 7})

	for n := range r1.Communities {
		if r1.Communities[n] != r2.Communities[n] {
			t.Fatalf("same seed should produce identical partitions: node %s got %s vs %s", n, r1.Communities[n], r2.Communities[n])
		}
	}
}

func TestHigherResolutionFragmentsMore(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a": {"b": 1, "c": 1, "d": 1},
		"b": {"c": 1, "d": 1},
		"c": {"d": 1},
		"e": {"f": 1, "g": 1, "h": 1},
		"f": {"g": 1, "h": 1},
		"g": {"h": 1},
		"d": {"e": 0.05},
	})

	low := Partition(g, Options{Resolution: 0.5, Seed: 1})
	high := Partition(g, Options{Resolution: 2.0, Seed: 1})

	lowCount := len(distinctCommunities(low))
	highCount := len(distinctCommunities(high))

	if highCount < lowCount {
		t.Errorf("expected higher resolution to produce >= communities: low=%d high=%d", lowCount, highCount)
	}
}

func distinctCommunities(r Result) map[string]bool {
	out := make(map[string]bool)
	for _, c := range r.Communities {
		out[c] = true
	}
	return out
}

func TestMinCommunitySizeMergesSingletons(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a": {"b": 1, "c": 1},
		"b": {"c": 1},
		"lonely": {"a": 0.01},
	})

	result := Partition(g, Options{MinCommunitySize: 2, Seed: 1})
	sizes := make(map[string]int)
	for _, c := range result.Communities {
		sizes[c]++
	}
	for c, size := range sizes {
		if size < 2 {
			t.Errorf("community %s has size %d, below MinCommunitySize=2", c, size)
		}
	}
}

// P8: modularity should be non-negative and the partition should report
// a consistent iteration count.
func TestModularityNonNegativeForClearClusters(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a": {"b": 1, "c": 1},
		"b": {"c": 1},
		"d": {"e": 1, "f": 1},
		"e": {"f": 1},
	})
	result := Partition(g, Options{Seed: 3})
	if result.Modularity < 0 {
		t.Errorf("expected non-negative modularity for clear clusters, got %v", result.Modularity)
	}
	if result.Iterations <= 0 {
		t.Errorf("expected at least one iteration, got %d", result.Iterations)
	}
}

func TestFindBridgeNodesDetectsCrossCommunityHub(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a1": {"a2": 1},
		"a2": {"hub": 1},
		"hub": {"b1": 1},
		"b1":  {"b2": 1},
	})
	result := Partition(g, Options{Seed: 1})
	bridges := FindBridgeNodes(g, result, 2)

	found := false
	for _, b := range bridges {
		if b == "hub" || b == "a2" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a bridge node to be detected, got %v", bridges)
	}
}

func TestAnnotateCommunitiesReturnsNodeToCommunityMap(t *testing.T) {
	g := symmetrize(map[string]map[string]float64{
		"a": {"b": 1},
	})
	result := Partition(g, Options{Seed: 1})
	annotated := AnnotateCommunities(result)
	if annotated["a"] == "" || annotated["b"] == "" {
		t.Fatalf("expected every node annotated, got %+v", annotated)
	}
}
