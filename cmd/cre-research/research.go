// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/cre-research/internal/orchestrator"
	"github.com/pdiddy/cre-research/internal/report"
	"github.com/pdiddy/cre-research/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run one research query and print the synthesized answer",
	Long: `Research categorizes the query, fans it out to the matching source
adapters plus the general fallback, and synthesizes a cited markdown answer.

Pass --document to include pre-analyzed document context (a JSON file with
summary, topics, and word_count). Pass --report to also write the full
report artifact to a file.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("session", "", "session id (default: generated)")
	researchCmd.Flags().String("document", "", "path to a document-context JSON file")
	researchCmd.Flags().String("report", "", "write the markdown report to this file")
	researchCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var doc *types.DocumentContext
	if path, _ := cmd.Flags().GetString("document"); path != "" {
		doc, err = readDocumentContext(path)
		if err != nil {
			return err
		}
	}

	result, err := p.orch.Run(context.Background(), orchestrator.Request{
		Query:     args[0],
		SessionID: sessionID,
		Document:  doc,
	})
	if err != nil {
		return err
	}

	// Progress trail goes to stderr so stdout stays clean markdown.
	for _, e := range p.sessions.Get(sessionID).Events {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", e.Timestamp, e.Source, e.Step)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Println(strings.TrimRight(result.Answer.Response, "\n"))
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		body := report.Render(args[0], result.Category, result.Answer, result.Records, time.Now())
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}
	return nil
}

// readDocumentContext parses a document-context JSON file.
func readDocumentContext(path string) (*types.DocumentContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document context: %w", err)
	}
	var doc types.DocumentContext
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document context: %w", err)
	}
	return &doc, nil
}
