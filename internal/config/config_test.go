package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHomeDirDefaultsToDotChitragupta(t *testing.T) {
	os.Unsetenv(homeEnvVar)
	home, err := HomeDir()
	if err != nil {
		t.Fatalf("HomeDir: %v", err)
	}
	if filepath.Base(home) != ".chitragupta" {
		t.Fatalf("expected home to end in .chitragupta, got %s", home)
	}
}

func TestHomeDirRespectsEnvOverride(t *testing.T) {
	t.Setenv(homeEnvVar, "/tmp/custom-chitragupta")
	home, err := HomeDir()
	if err != nil {
		t.Fatalf("HomeDir: %v", err)
	}
	if home != "/tmp/custom-chitragupta" {
		t.Fatalf("expected override home, got %s", home)
	}
}

func TestEnsureHomeDirsCreatesSubdirs(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureHomeDirs(dir); err != nil {
		t.Fatalf("EnsureHomeDirs: %v", err)
	}
	for _, sub := range []string{GraphRAGDir, MemoryDir, SmaranDir} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("expected subdir %s to exist", sub)
		}
	}
}

func TestLoadReturnsDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, Config{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingProvider != "auto" {
		t.Errorf("expected default embedding provider 'auto', got %q", cfg.EmbeddingProvider)
	}
	if cfg.PageRankDamping != 0.85 {
		t.Errorf("expected default damping 0.85, got %v", cfg.PageRankDamping)
	}
}

func TestLoadMergesUserFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{EmbeddingModel: "custom-model", RetrievalAlpha: 0.9}
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir, Config{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.EmbeddingModel != "custom-model" {
		t.Errorf("expected user file's embedding model, got %q", loaded.EmbeddingModel)
	}
	if loaded.RetrievalAlpha != 0.9 {
		t.Errorf("expected user file's retrieval alpha, got %v", loaded.RetrievalAlpha)
	}
	// Fields the user file didn't set should still come from defaults.
	if loaded.PageRankDamping != 0.85 {
		t.Errorf("expected default damping to survive merge, got %v", loaded.PageRankDamping)
	}
}

func TestLoadExplicitOverridesWinOverUserFile(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, Config{EmbeddingModel: "from-file"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir, Config{EmbeddingModel: "from-override"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.EmbeddingModel != "from-override" {
		t.Errorf("expected explicit override to win, got %q", loaded.EmbeddingModel)
	}
}

func TestLoadOllamaHostEnvWinsOverEverything(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, Config{OllamaHost: "http://from-file:11434"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Setenv("OLLAMA_HOST", "http://from-env:11434")

	loaded, err := Load(dir, Config{OllamaHost: "http://from-override:11434"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.OllamaHost != "http://from-env:11434" {
		t.Errorf("expected OLLAMA_HOST env to win, got %q", loaded.OllamaHost)
	}
}

func TestGraphRAGPathUnderHome(t *testing.T) {
	got := GraphRAGPath("/home/user/.chitragupta")
	want := filepath.Join("/home/user/.chitragupta", "graphrag", "graph.db")
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
