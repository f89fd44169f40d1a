package main

import (
	"fmt"
	"time"

	"github.com/sriinnu/chitragupta/internal/entity"
	"github.com/sriinnu/chitragupta/internal/graph"
	"github.com/sriinnu/chitragupta/internal/logger"
	"github.com/sriinnu/chitragupta/internal/pagerank"
	"github.com/spf13/cobra"
)

func ingestCmd(homeFlag *string) *cobra.Command {
	var sessionID string
	var label string

	cmd := &cobra.Command{
		Use:   "ingest [text]",
		Short: "Ingest a turn of text into the knowledge graph",
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

			text := args[0]
			if sessionID == "" {
				sessionID = graph.NewSessionID()
			}

			now := time.Now()
			turnID := sessionID + "-" + now.Format("20060102T150405.000000000")
			turnLabel := label
			if turnLabel == "" {
				turnLabel = truncate(text, 40)
			}
			if err := store.UpsertNode(graph.Node{
				ID:        turnID,
				Type:      graph.NodeTurn,
				Label:     turnLabel,
				Content:   text,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("upsert turn node: %w", err)
			}

			if _, err := svc.Embed(text); err != nil {
				logger.Warn("chitragupta: embed turn failed", "err", err)
			}

			gen := entity.NewOllamaGenerator(cfg.GenerationModel, cfg.OllamaHost)
			entities := entity.Extract(text, gen)

			ranks, err := store.LoadPageRank()
			if err != nil {
				logger.Warn("chitragupta: load pagerank failed", "err", err)
				ranks = map[string]float64{}
			}
			engine := pagerank.NewEngine(cfg.PageRankDamping)
			for id := range ranks {
				engine.EnsureNode(id)
			}
			engine.EnsureNode(turnID)

			for _, e := range entities {
				entityID := "concept:" + e.Name
				if existing, err := store.GetNode(entityID); err == nil && existing != nil {
					existing.UpdatedAt = now
					if err := store.UpsertNode(*existing); err != nil {
						return fmt.Errorf("touch entity node %s: %w", entityID, err)
					}
				} else {
					if err := store.UpsertNode(graph.Node{
						ID:        entityID,
						Type:      nodeTypeFor(e.Type),
						Label:     e.Name,
						Content:   e.Description,
						CreatedAt: now,
						UpdatedAt: now,
					}); err != nil {
						return fmt.Errorf("upsert entity node %s: %w", entityID, err)
					}
				}

				weight := graph.WeightPrimary
				if e.Description == "" {
					weight = graph.WeightWeak
				}
				if err := store.InsertEdge(graph.Edge{
					Source:       turnID,
					Target:       entityID,
					Relationship: "mentions",
					Weight:       weight,
					Pramana:      "entity-extraction",
				}); err != nil {
					return fmt.Errorf("insert mention edge: %w", err)
				}

				engine.EnsureNode(entityID)
				engine.AddEdge(turnID, entityID)
			}

			if err := store.SavePageRank(engine.Ranks()); err != nil {
				logger.Warn("chitragupta: save pagerank failed", "err", err)
			}

			fmt.Printf("ingested: %s (%d entities)\n", turnID, len(entities))
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id this turn belongs to (default: generate a new one)")
	cmd.Flags().StringVar(&label, "label", "", "Short label for the turn node (default: truncated text)")
	return cmd
}

func nodeTypeFor(t entity.Type) graph.NodeType {
	switch t {
	case entity.TypePerson:
		return graph.NodePerson
	case entity.TypeOrganization:
		return graph.NodeOrganization
	case entity.TypeFile:
		return graph.NodeFile
	case entity.TypeTool:
		return graph.NodeTool
	default:
		return graph.NodeConcept
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
