package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/scgen/internal/client"
	"github.com/amishk599/scgen/internal/tui"
)

var endpoint string

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Open the interactive form",
	Long:  "Fill in the form, then generate, proofread, export or copy the response. Needs a running `scgen serve`.",
	RunE:  runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&endpoint, "endpoint", "", "generation endpoint base URL (overrides client.endpoint)")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if endpoint != "" {
		cfg.Client.Endpoint = endpoint
	}

	// Anything written to the terminal would corrupt the alt screen.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := client.New(cfg.Client.Endpoint, &http.Client{})
	return tui.Run(tui.Options{
		Generator: c,
		ExportDir: cfg.Client.ExportDir,
		Timeout:   cfg.Client.Timeout,
		Logger:    logger,
	})
}
