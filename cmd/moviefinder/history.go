package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helixml/moviefinder"
	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/internal/log"
)

// Output formats for the history command.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func historyCmd() *cobra.Command {
	var (
		envFile string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored recommendations",
		Long: `Print every stored recommendation, oldest first.

Only DATABASE_URL is needed; suggestion and catalog credentials are not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.OutOrStdout(), envFile, output)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json, yaml")

	return cmd
}

func runHistory(w io.Writer, envFile, output string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	slogger := log.Configure(cfg).Slog()

	client, err := moviefinder.OpenHistory(append(storageOptions(cfg), moviefinder.WithLogger(slogger))...)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close moviefinder client", slog.Any("error", err))
		}
	}()

	rows, err := client.History.List(context.Background())
	if err != nil {
		return fmt.Errorf("list recommendations: %w", err)
	}

	return renderHistory(w, historyEntries(rows, slogger), output, time.Now())
}

// historyEntry is the exported shape of one stored recommendation.
type historyEntry struct {
	ID                int64            `json:"id" yaml:"id"`
	UserInput         string           `json:"user_input" yaml:"user_input"`
	RecommendedMovies []movie.ItemJSON `json:"recommended_movies" yaml:"recommended_movies"`
	Timestamp         time.Time        `json:"timestamp" yaml:"timestamp"`
}

func historyEntries(rows []recommendation.Stored, logger *slog.Logger) []historyEntry {
	entries := make([]historyEntry, len(rows))
	for i, row := range rows {
		items, err := row.Movies()
		if err != nil {
			logger.Warn("stored recommendation has unreadable movies", slog.Int64("id", row.ID()), slog.Any("error", err))
		}
		entries[i] = historyEntry{
			ID:                row.ID(),
			UserInput:         row.UserInput(),
			RecommendedMovies: movie.ItemsToJSON(items),
			Timestamp:         row.Timestamp(),
		}
	}
	return entries
}

func renderHistory(w io.Writer, entries []historyEntry, output string, now time.Time) error {
	switch strings.ToLower(output) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case outputTable, "":
		return renderTable(w, entries, now)
	default:
		return fmt.Errorf("unknown output format %q: want table, json or yaml", output)
	}
}

func renderTable(w io.Writer, entries []historyEntry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tWHEN\tREQUEST\tMOVIES")
	for _, e := range entries {
		titles := make([]string, len(e.RecommendedMovies))
		for i, m := range e.RecommendedMovies {
			titles[i] = m.Title
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			e.ID,
			humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			e.UserInput,
			strings.Join(titles, ", "),
		)
	}
	return tw.Flush()
}
