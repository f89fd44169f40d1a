// Package config loads chitragupta's on-disk configuration: defaults,
// merged with a user YAML file, merged with explicit overrides (env vars
// and caller-supplied values), in that precedence order.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the CORE packages read at startup.
type Config struct {
	EmbeddingProvider string  `yaml:"embedding_provider,omitempty"` // auto|ollama|openai
	EmbeddingModel    string  `yaml:"embedding_model,omitempty"`
	GenerationModel   string  `yaml:"generation_model,omitempty"`
	OllamaHost        string  `yaml:"ollama_host,omitempty"`
	OpenAIAPIKey      string  `yaml:"openai_api_key,omitempty"`
	EmbeddingCacheCap int     `yaml:"embedding_cache_capacity,omitempty"`

	PageRankDamping float64 `yaml:"pagerank_damping,omitempty"`
	PageRankEpsilon float64 `yaml:"pagerank_epsilon,omitempty"`

	RetrievalAlpha float64 `yaml:"retrieval_alpha,omitempty"`
	RetrievalBeta  float64 `yaml:"retrieval_beta,omitempty"`
	RetrievalGamma float64 `yaml:"retrieval_gamma,omitempty"`

	QueryPlanMaxSubQueries int `yaml:"queryplan_max_subqueries,omitempty"`

	SmaranDefaultHalfLifeDays float64 `yaml:"smaran_default_half_life_days,omitempty"`

	BudgetDefaultTotal int `yaml:"budget_default_total,omitempty"`
}

// defaults returns the built-in configuration, the lowest-precedence
// layer.
func defaults() Config {
	return Config{
		EmbeddingProvider:         "auto",
		EmbeddingModel:            "mxbai-embed-large",
		GenerationModel:           "llama3",
		OllamaHost:                "http://localhost:11434",
		EmbeddingCacheCap:         10000,
		PageRankDamping:           0.85,
		PageRankEpsilon:           1e-6,
		RetrievalAlpha:            0.60,
		RetrievalBeta:             0.25,
		RetrievalGamma:            0.15,
		QueryPlanMaxSubQueries:    5,
		SmaranDefaultHalfLifeDays: 90,
		BudgetDefaultTotal:        8000,
	}
}

// Load builds the effective config: defaults, then home/config.yaml if
// present, then overrides (non-zero fields in overrides win, and
// OLLAMA_HOST always wins over both when set, per §6).
func Load(home string, overrides Config) (Config, error) {
	cfg := defaults()

	userPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(userPath)
	if err == nil {
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return Config{}, err
		}
		cfg = mergeConfig(cfg, fromFile)
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	cfg = mergeConfig(cfg, overrides)

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.OllamaHost = host
	}

	return cfg, nil
}

// Save writes cfg to home/config.yaml, creating home if necessary.
func Save(home string, cfg Config) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(home, "config.yaml"), data, 0o644)
}

// mergeConfig layers override on top of base: any non-zero field in
// override replaces base's.
func mergeConfig(base, override Config) Config {
	if override.EmbeddingProvider != "" {
		base.EmbeddingProvider = override.EmbeddingProvider
	}
	if override.EmbeddingModel != "" {
		base.EmbeddingModel = override.EmbeddingModel
	}
	if override.GenerationModel != "" {
		base.GenerationModel = override.GenerationModel
	}
	if override.OllamaHost != "" {
		base.OllamaHost = override.OllamaHost
	}
	if override.OpenAIAPIKey != "" {
		base.OpenAIAPIKey = override.OpenAIAPIKey
	}
	if override.EmbeddingCacheCap != 0 {
		base.EmbeddingCacheCap = override.EmbeddingCacheCap
	}
	if override.PageRankDamping != 0 {
		base.PageRankDamping = override.PageRankDamping
	}
	if override.PageRankEpsilon != 0 {
		base.PageRankEpsilon = override.PageRankEpsilon
	}
	if override.RetrievalAlpha != 0 {
		base.RetrievalAlpha = override.RetrievalAlpha
	}
	if override.RetrievalBeta != 0 {
		base.RetrievalBeta = override.RetrievalBeta
	}
	if override.RetrievalGamma != 0 {
		base.RetrievalGamma = override.RetrievalGamma
	}
	if override.QueryPlanMaxSubQueries != 0 {
		base.QueryPlanMaxSubQueries = override.QueryPlanMaxSubQueries
	}
	if override.SmaranDefaultHalfLifeDays != 0 {
		base.SmaranDefaultHalfLifeDays = override.SmaranDefaultHalfLifeDays
	}
	if override.BudgetDefaultTotal != 0 {
		base.BudgetDefaultTotal = override.BudgetDefaultTotal
	}
	return base
}
