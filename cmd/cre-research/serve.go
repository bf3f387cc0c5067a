// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/cre-research/internal/report"
	"github.com/pdiddy/cre-research/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP research server",
	Long: `Serve exposes the research pipeline over HTTP: POST /api/research to
submit a query, GET /api/status/{session} to poll progress while a request
is in flight, and GET /api/reports/{id} to download the report artifact.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().Bool("dev", false, "human-readable development logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	var log *zap.Logger
	var err error
	if dev, _ := cmd.Flags().GetBool("dev"); dev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	reports := report.NewStore(cfg.Reports.TTL)
	defer reports.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(log, p.orch, p.sessions, reports)
	return srv.ListenAndServe(ctx, cfg.Server)
}
