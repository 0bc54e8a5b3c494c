package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/moviefinder"
	"github.com/helixml/moviefinder/internal/log"
	"github.com/helixml/moviefinder/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants ask for movie recommendations and read the stored history.
Configuration is loaded from environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr; stdout carries the MCP protocol
	logger := log.Configure(cfg)
	slogger := logger.Slog()

	slogger.Info("starting MCP server", slog.String("version", version))

	client, err := moviefinder.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create moviefinder client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close moviefinder client", slog.Any("error", err))
		}
	}()

	mcpServer := mcp.NewServer(client.Recommendations, client.History, version, slogger)

	return mcpServer.ServeStdio()
}
