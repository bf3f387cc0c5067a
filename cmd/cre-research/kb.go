// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cre-research/internal/knowledgebase"
	"github.com/pdiddy/cre-research/internal/synthesis"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the local background corpus (seed, search)",
	Long: `Kb manages the SQLite knowledge base the general fallback adapter
searches before reaching for the web. Seed it from a YAML article file,
then query it directly to inspect what the fallback adapter would find.`,
}

// --- seed subcommand ---

var kbSeedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load background articles from a YAML file",
	Long: `Seed ingests articles from a YAML file into the knowledge base.
Seeding is additive: existing articles stay, and reseeding the same file
inserts duplicates rather than replacing rows.`,
	Args: cobra.ExactArgs(1),
	RunE: runKbSeed,
}

func runKbSeed(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := knowledgebase.Open(cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Seed(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d article(s) into %s\n", n, cfg.KnowledgeBase.Path)
	return nil
}

// --- search subcommand ---

var kbSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the knowledge base with full-text search",
	Args:  cobra.ExactArgs(1),
	RunE:  runKbSearch,
}

func runKbSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := knowledgebase.Open(cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Search(context.Background(), args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No matching articles.")
		return nil
	}

	for i, r := range records {
		fmt.Printf("%d. %s\n   %s\n", i+1, synthesis.FormatReference(r), r.Summary)
	}
	return nil
}

func init() {
	kbCmd.AddCommand(kbSeedCmd)
	kbCmd.AddCommand(kbSearchCmd)
	rootCmd.AddCommand(kbCmd)
}
