package queryplan

import (
	"context"
	"fmt"
	"testing"
)

func TestIsComplexLongQuery(t *testing.T) {
	q := "what were the main architectural decisions made during the migration"
	if !IsComplex(q) {
		t.Fatalf("expected long query to be complex: %q", q)
	}
}

func TestIsComplexShortSimpleQueryIsNotComplex(t *testing.T) {
	q := "raft consensus"
	if IsComplex(q) {
		t.Fatalf("expected short query to not be complex: %q", q)
	}
}

func TestIsComplexComparativeMarker(t *testing.T) {
	if !IsComplex("Postgres vs SQLite") {
		t.Fatal("expected comparative marker to trigger complexity")
	}
}

func TestIsComplexCausalMarker(t *testing.T) {
	if !IsComplex("why did the deploy fail") {
		t.Fatal("expected causal marker to trigger complexity")
	}
}

// S4: "Compare authentication and authorization" decomposes with
// weights 1.0 / <=0.8 / <=0.6.
func TestDecomposeComparisonWithAnd(t *testing.T) {
	subs := Decompose("Compare authentication and authorization", 5)
	if len(subs) < 2 {
		t.Fatalf("expected decomposition, got %+v", subs)
	}
	if subs[0].Weight != 1.0 {
		t.Errorf("expected original sub-query weight 1.0, got %v", subs[0].Weight)
	}
	for _, sq := range subs[1:] {
		if sq.Weight > 0.8 {
			t.Errorf("expected decomposed sub-query weight <= 0.8, got %v for %q", sq.Weight, sq.Text)
		}
	}
}

func TestDecomposeDifferenceBetween(t *testing.T) {
	subs := Decompose("difference between REST and GraphQL", 5)
	found := map[string]bool{}
	for _, sq := range subs {
		found[sq.Text] = true
	}
	if !found["REST"] || !found["GraphQL"] {
		t.Fatalf("expected REST and GraphQL as sub-queries, got %+v", subs)
	}
}

func TestDecomposeEntityList(t *testing.T) {
	subs := Decompose("compare auth, billing, and notifications systems and their failure modes", 5)
	if len(subs) < 3 {
		t.Fatalf("expected multiple sub-queries from entity list, got %+v", subs)
	}
}

func TestDecomposeSimpleQueryReturnsItself(t *testing.T) {
	subs := Decompose("raft", 5)
	if len(subs) != 1 || subs[0].Text != "raft" || subs[0].Weight != 1.0 {
		t.Fatalf("expected single passthrough sub-query, got %+v", subs)
	}
}

func TestDecomposeClampsToMaxSubQueries(t *testing.T) {
	subs := Decompose("auth, billing, notifications, search, and reporting and why it matters and what changed", 3)
	if len(subs) > 3 {
		t.Fatalf("expected at most 3 sub-queries, got %d: %+v", len(subs), subs)
	}
}

func TestExecuteRunsAllSubQueriesConcurrently(t *testing.T) {
	subs := []SubQuery{{Text: "a", Weight: 1.0}, {Text: "b", Weight: 0.8}}
	search := func(ctx context.Context, q string) ([]Result, error) {
		return []Result{{ID: q + "-1", Title: q, Content: q, Score: 1.0}}, nil
	}
	results, err := Execute(context.Background(), subs, search)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 sub-query results, got %d", len(results))
	}
}

func TestExecutePropagatesError(t *testing.T) {
	subs := []SubQuery{{Text: "a", Weight: 1.0}}
	search := func(ctx context.Context, q string) ([]Result, error) {
		return nil, fmt.Errorf("boom")
	}
	_, err := Execute(context.Background(), subs, search)
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestFuseAccumulatesWeightedScoresAcrossSubQueries(t *testing.T) {
	results := []SubQueryResult{
		{SubQuery: SubQuery{Text: "a", Weight: 1.0}, Results: []Result{{ID: "n1", Score: 0.5}}},
		{SubQuery: SubQuery{Text: "b", Weight: 0.5}, Results: []Result{{ID: "n1", Score: 0.8}, {ID: "n2", Score: 0.9}}},
	}
	fused := Fuse(results, 10)

	var n1 *Result
	for i := range fused {
		if fused[i].ID == "n1" {
			n1 = &fused[i]
		}
	}
	if n1 == nil {
		t.Fatal("expected n1 in fused results")
	}
	want := 1.0*0.5 + 0.5*0.8
	if diff := n1.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected fused score %v, got %v", want, n1.Score)
	}
}

func TestFuseRespectsTopK(t *testing.T) {
	results := []SubQueryResult{
		{SubQuery: SubQuery{Text: "a", Weight: 1.0}, Results: []Result{
			{ID: "n1", Score: 0.9}, {ID: "n2", Score: 0.5}, {ID: "n3", Score: 0.1},
		}},
	}
	fused := Fuse(results, 2)
	if len(fused) != 2 {
		t.Fatalf("want 2 results, got %d", len(fused))
	}
}

func TestGapFollowUpsSkipsCoveredTerms(t *testing.T) {
	original := "raft leader election timeout"
	previous := []SubQuery{{Text: "raft leader election timeout", Weight: 1.0}}
	gathered := []Result{{Title: "Raft", Content: "leader election uses a randomized timeout"}}

	followUps := GapFollowUps(original, previous, gathered, 5)
	for _, f := range followUps {
		if f.Text == "leader" || f.Text == "election" || f.Text == "timeout" {
			t.Errorf("expected covered term %q to be skipped", f.Text)
		}
	}
}

func TestGapFollowUpsSurfacesUncoveredTerm(t *testing.T) {
	original := "kubernetes networking cilium"
	previous := []SubQuery{{Text: "kubernetes networking cilium", Weight: 1.0}}
	gathered := []Result{{Title: "Kubernetes", Content: "networking overview with no mention of the other term"}}

	followUps := GapFollowUps(original, previous, gathered, 5)
	found := false
	for _, f := range followUps {
		if f.Text == "cilium" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'cilium' follow-up, got %+v", followUps)
	}
}

func TestGapFollowUpsRespectsBudget(t *testing.T) {
	original := "alpha bravo charlie delta echo foxtrot"
	previous := []SubQuery{{Text: "alpha bravo charlie delta echo foxtrot", Weight: 1.0}, {Text: "second", Weight: 0.8}}
	followUps := GapFollowUps(original, previous, nil, 3)
	if len(followUps) > 1 {
		t.Fatalf("expected at most 1 follow-up given budget, got %d", len(followUps))
	}
}
