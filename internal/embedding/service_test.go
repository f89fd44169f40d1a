package embedding

import (
	"path/filepath"
	"testing"
)

type countingEmbedder struct {
	calls int
	dims  int
}

func (c *countingEmbedder) Name() string { return "counting" }
func (c *countingEmbedder) Dims() int    { return c.dims }
func (c *countingEmbedder) Embed(texts []string) ([][]float32, error) {
	c.calls++
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = []float32{float32(len(t))}
	}
	return vecs, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }
func (failingEmbedder) Dims() int    { return 8 }
func (failingEmbedder) Embed(texts []string) ([][]float32, error) {
	return nil, ErrProviderUnavailable
}

func TestServiceCachesRepeatedText(t *testing.T) {
	emb := &countingEmbedder{dims: 1}
	svc, err := NewService(emb, 0, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Embed("hello"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if _, err := svc.Embed("hello"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("want 1 underlying call for a cache hit, got %d", emb.calls)
	}
}

// I5: LRU eviction bounds the cache at its configured capacity.
func TestServiceEvictsAtCapacity(t *testing.T) {
	emb := &countingEmbedder{dims: 1}
	svc, err := NewService(emb, 2, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Embed("a")
	svc.Embed("b")
	svc.Embed("c") // evicts "a"
	if svc.Len() != 2 {
		t.Fatalf("want capacity-bounded length 2, got %d", svc.Len())
	}
	svc.Embed("a") // re-embeds, since "a" was evicted
	if emb.calls != 4 {
		t.Fatalf("want 4 underlying calls, got %d", emb.calls)
	}
}

func TestServiceFallsBackOnProviderError(t *testing.T) {
	svc, err := NewService(failingEmbedder{}, 0, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	vec, err := svc.Embed("some text")
	if err != nil {
		t.Fatalf("embed should not error on provider failure: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("fallback vector want 8 dims, got %d", len(vec))
	}
}

func TestServicePersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")

	emb := &countingEmbedder{dims: 1}
	svc1, err := NewService(emb, 0, cachePath)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc1.Embed("persisted")

	svc2, err := NewService(emb, 0, cachePath)
	if err != nil {
		t.Fatalf("reload service: %v", err)
	}
	if svc2.Len() != 1 {
		t.Fatalf("want 1 entry reloaded from disk, got %d", svc2.Len())
	}
	if _, err := svc2.Embed("persisted"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("want reload to serve from cache without a new provider call, got %d calls", emb.calls)
	}
}

// FallbackEmbed must be deterministic and stable across runs for identical text.
func TestFallbackEmbedDeterministic(t *testing.T) {
	v1 := FallbackEmbed("the quick brown fox", 16)
	v2 := FallbackEmbed("the quick brown fox", 16)
	if len(v1) != 16 {
		t.Fatalf("want 16 dims, got %d", len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("fallback embed not deterministic at index %d: %f vs %f", i, v1[i], v2[i])
		}
	}
	v3 := FallbackEmbed("a different string entirely", 16)
	same := true
	for i := range v1 {
		if v1[i] != v3[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("fallback embed: distinct texts produced identical vectors")
	}
}

func TestResetAvailability(t *testing.T) {
	resetAvailability()
	availability.Lock()
	n := len(availability.checked)
	availability.Unlock()
	if n != 0 {
		t.Fatalf("want empty availability memo after reset, got %d entries", n)
	}
}
