package main

import (
	"context"
	"fmt"

	"github.com/sriinnu/chitragupta/internal/logger"
	"github.com/sriinnu/chitragupta/internal/queryplan"
	"github.com/sriinnu/chitragupta/internal/retrieval"
	"github.com/spf13/cobra"
)

func queryCmd(homeFlag *string) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Answer a query against the knowledge graph via hybrid retrieval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := resolveHome(*homeFlag)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(home)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := openStore(home)
			if err != nil {
				return err
			}
			defer store.Close()

			svc, err := openEmbeddingService(cfg, home)
			if err != nil {
				return fmt.Errorf("embedding service: %w", err)
			}

			ranks, err := store.LoadPageRank()
			if err != nil {
				logger.Warn("chitragupta: load pagerank failed", "err", err)
				ranks = map[string]float64{}
			}

			nodes, err := store.AllNodes()
			if err != nil {
				return fmt.Errorf("load nodes: %w", err)
			}
			retrievalNodes := make([]retrieval.Node, 0, len(nodes))
			for _, n := range nodes {
				retrievalNodes = append(retrievalNodes, retrieval.Node{
					ID:      n.ID,
					Label:   n.Label,
					Content: n.Content,
				})
			}

			weights := retrieval.Weights{
				Alpha: cfg.RetrievalAlpha,
				Beta:  cfg.RetrievalBeta,
				Gamma: cfg.RetrievalGamma,
			}

			search := func(ctx context.Context, q string) ([]queryplan.Result, error) {
				qVec, err := svc.Embed(q)
				if err != nil {
					return nil, fmt.Errorf("embed sub-query: %w", err)
				}
				scored := retrieval.Rank(retrievalNodes, qVec, q, ranks, weights, topK)
				out := make([]queryplan.Result, len(scored))
				for i, s := range scored {
					out[i] = queryplan.Result{ID: s.Node.ID, Title: s.Node.Label, Content: s.Node.Content, Score: s.Score}
				}
				return out, nil
			}

			query := args[0]
			var results []queryplan.Result
			if queryplan.IsComplex(query) {
				subQueries := queryplan.Decompose(query, cfg.QueryPlanMaxSubQueries)
				subResults, err := queryplan.Execute(cmd.Context(), subQueries, search)
				if err != nil {
					return fmt.Errorf("execute sub-queries: %w", err)
				}
				results = queryplan.Fuse(subResults, topK)
			} else {
				results, err = search(cmd.Context(), query)
				if err != nil {
					return err
				}
			}

			if len(results) == 0 {
				fmt.Println("no results")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%.4f  %s  %s\n", r.Score, r.ID, truncate(r.Content, 80))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 10, "Maximum number of results to return")
	return cmd
}
