// Command chitragupta is a thin demo CLI over the memory core: it ingests
// turns into the knowledge graph, answers queries through the hybrid
// retrieval engine, and remembers user facts in smaran. It is not itself
// part of the CORE — a real embedding assistant wires the same packages
// behind its own chat loop.
package main

import (
	"fmt"
	"os"

	"github.com/sriinnu/chitragupta/internal/config"
	"github.com/sriinnu/chitragupta/internal/embedding"
	"github.com/sriinnu/chitragupta/internal/graph"
	"github.com/sriinnu/chitragupta/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	var homeFlag string
	var logLevel string

	root := &cobra.Command{
		Use:   "chitragupta",
		Short: "chitragupta — local-first AI assistant memory core",
		Long:  "Maintains a knowledge graph, incremental PageRank, and a typed fact store over an assistant's conversation history.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logLevel, "")
		},
	}
	root.PersistentFlags().StringVar(&homeFlag, "home", "", "Override data directory (default ~/.chitragupta, or $CHITRAGUPTA_HOME)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	root.AddCommand(
		ingestCmd(&homeFlag),
		queryCmd(&homeFlag),
		rememberCmd(&homeFlag),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveHome returns the effective home directory, ensuring its
// subdirectories exist.
func resolveHome(homeFlag string) (string, error) {
	home := homeFlag
	if home == "" {
		var err error
		home, err = config.HomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
	}
	if err := config.EnsureHomeDirs(home); err != nil {
		return "", fmt.Errorf("ensure home dirs: %w", err)
	}
	return home, nil
}

// loadConfig loads the effective config for home, with no explicit
// per-invocation overrides — the CLI only ever uses file+env precedence.
func loadConfig(home string) (config.Config, error) {
	return config.Load(home, config.Config{})
}

// openStore opens (and migrates, if needed) the SQLite graph store under
// home, falling back to a one-shot legacy JSON migration per §4.K.
func openStore(home string) (*graph.Store, error) {
	dbPath := config.GraphRAGPath(home)
	store, err := graph.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}

	graphJSON := home + "/graph.json"
	pagerankJSON := home + "/pagerank.json"
	needs, err := store.NeedsMigration(graphJSON)
	if err != nil {
		logger.Warn("chitragupta: migration check failed", "err", err)
	} else if needs {
		if err := store.MigrateFromJSON(graphJSON, pagerankJSON); err != nil {
			logger.Warn("chitragupta: legacy migration failed", "err", err)
		}
	}
	return store, nil
}

// openEmbeddingService wires an Embedder for cfg's provider behind the
// LRU/fallback Service, persisted alongside the graph store.
func openEmbeddingService(cfg config.Config, home string) (*embedding.Service, error) {
	embedder, err := embedding.NewFromProvider(cfg.EmbeddingProvider, cfg.EmbeddingModel, cfg.OllamaHost)
	if err != nil {
		logger.Warn("chitragupta: no embedding provider reachable, using deterministic fallback", "err", err)
		embedder = embedding.NewOllama(cfg.EmbeddingModel, cfg.OllamaHost)
	}
	persistPath := home + "/embeddings.json"
	return embedding.NewService(embedder, cfg.EmbeddingCacheCap, persistPath)
}
