package main

import (
	"fmt"

	"github.com/sriinnu/chitragupta/internal/config"
	"github.com/sriinnu/chitragupta/internal/smaran"
	"github.com/spf13/cobra"
)

func rememberCmd(homeFlag *string) *cobra.Command {
	root := &cobra.Command{
		Use:   "remember",
		Short: "Manage smaran fact entries",
	}
	root.AddCommand(
		rememberAddCmd(homeFlag),
		rememberListCmd(homeFlag),
		rememberForgetCmd(homeFlag),
	)
	return root
}

func openSmaran(home string) (*smaran.Store, string, error) {
	dir := config.SmaranPath(home)
	store, err := smaran.Load(dir)
	if err != nil {
		return nil, "", fmt.Errorf("load smaran store: %w", err)
	}
	return store, dir, nil
}

func rememberAddCmd(homeFlag *string) *cobra.Command {
	var category string
	var inferred bool

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Remember a new fact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := resolveHome(*homeFlag)
			if err != nil {
				return err
			}
			store, dir, err := openSmaran(home)
			if err != nil {
				return err
			}

			content := args[0]
			cat := smaran.Category(category)
			if category == "" {
				cat = smaran.DetectCategory(content)
			}
			// DecayHalfLifeDays: -1 means "use the source default" — the CLI
			// never takes an explicit half-life, so every call leaves it unset.
			opts := smaran.Options{DecayHalfLifeDays: -1}
			if inferred {
				opts.Source = smaran.SourceInferred
			} else {
				opts.Source = smaran.SourceExplicit
			}

			entry := store.Remember(content, cat, opts)
			if err := store.Save(dir); err != nil {
				return fmt.Errorf("save smaran store: %w", err)
			}
			fmt.Printf("remembered: %s (%s)\n", entry.ID, entry.Category)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category: preference|fact|decision|instruction (default: auto-detect)")
	cmd.Flags().BoolVar(&inferred, "inferred", false, "Mark this fact as inferred rather than explicit")
	return cmd
}

func rememberListCmd(homeFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all remembered facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := resolveHome(*homeFlag)
			if err != nil {
				return err
			}
			store, _, err := openSmaran(home)
			if err != nil {
				return err
			}
			entries := store.ListAll()
			if len(entries) == 0 {
				fmt.Println("no memories")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-12s  %.2f  %s\n", e.ID, e.Category, e.Confidence, e.Content)
			}
			return nil
		},
	}
}

func rememberForgetCmd(homeFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "forget [id]",
		Short: "Forget a remembered fact by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := resolveHome(*homeFlag)
			if err != nil {
				return err
			}
			store, dir, err := openSmaran(home)
			if err != nil {
				return err
			}
			if !store.Forget(args[0]) {
				return fmt.Errorf("forget %s: %w", args[0], smaran.ErrNotFound)
			}
			if err := store.Save(dir); err != nil {
				return fmt.Errorf("save smaran store: %w", err)
			}
			fmt.Println("forgotten:", args[0])
			return nil
		},
	}
}
