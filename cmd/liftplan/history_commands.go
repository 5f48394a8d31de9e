package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"liftplan/internal/api"
	"liftplan/internal/config"
	"liftplan/internal/daemonrun"
	"liftplan/internal/fileutil"
	"liftplan/internal/storage"
)

const (
	summaryColumnWidth = 60
	savedTimeLayout    = "2006-01-02 15:04"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit saved workout summaries",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryDeleteCommand(ctx))
	historyCmd.AddCommand(newHistoryRateCommand(ctx))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved summaries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				history, err := c.Store.History(cmd.Context())
				if err != nil {
					return fmt.Errorf("load history: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, api.NewHistoryResponse(history))
				}
				out := cmd.OutOrStdout()
				if len(history) == 0 {
					fmt.Fprintln(out, "No saved workouts")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(history))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print history as JSON")
	return cmd
}

func renderHistoryTable(history []storage.WorkoutSummary) string {
	rows := make([][]string, 0, len(history))
	for _, entry := range history {
		rows = append(rows, []string{
			strconv.FormatInt(entry.Timestamp, 10),
			time.UnixMilli(entry.Timestamp).Local().Format(savedTimeLayout),
			ratingLabel(entry.Rating),
			condenseText(entry.Summary, summaryColumnWidth),
		})
	}
	return renderTable(
		[]string{"Timestamp", "Saved", "Rating", "Summary"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func ratingLabel(r storage.Rating) string {
	if label := r.String(); label != "" {
		return label
	}
	return "-"
}

// condenseText flattens whitespace and truncates to limit runes.
func condenseText(s string, limit int) string {
	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit-1]) + "…"
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TIMESTAMP",
		Short: "Delete a saved summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := api.ParseTimestamp(args[0])
			if err != nil {
				return err
			}
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				before, err := c.Store.History(cmd.Context())
				if err != nil {
					return fmt.Errorf("load history: %w", err)
				}
				after, err := c.Store.DeleteWorkoutSummary(cmd.Context(), ts)
				if err != nil {
					return fmt.Errorf("delete summary: %w", err)
				}
				out := cmd.OutOrStdout()
				if findEntry(before, ts) == nil {
					fmt.Fprintf(out, "No saved workout with timestamp %d\n", ts)
					return nil
				}
				fmt.Fprintf(out, "Deleted workout %d (%d remaining)\n", ts, len(after))
				return nil
			})
		},
	}
}

func newHistoryRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate TIMESTAMP up|down",
		Short: "Attach thumbs-up or thumbs-down feedback to a saved summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := api.ParseTimestamp(args[0])
			if err != nil {
				return err
			}
			rating, ok := storage.ParseRating(args[1])
			if !ok {
				return fmt.Errorf("invalid rating %q (expected up or down)", args[1])
			}
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				history, err := c.Store.AddFeedback(cmd.Context(), ts, rating)
				if err != nil {
					return fmt.Errorf("record feedback: %w", err)
				}
				out := cmd.OutOrStdout()
				if findEntry(history, ts) == nil {
					fmt.Fprintf(out, "No saved workout with timestamp %d\n", ts)
					return nil
				}
				fmt.Fprintf(out, "Rated workout %d %s\n", ts, rating)
				return nil
			})
		},
	}
}

func findEntry(history []storage.WorkoutSummary, ts int64) *storage.WorkoutSummary {
	for i := range history {
		if history[i].Timestamp == ts {
			return &history[i]
		}
	}
	return nil
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved summaries as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported export format %q (expected json or yaml)", format)
			}
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				history, err := c.Store.History(cmd.Context())
				if err != nil {
					return fmt.Errorf("load history: %w", err)
				}
				data, err := encodeHistory(api.NewHistoryResponse(history), format)
				if err != nil {
					return err
				}
				if strings.TrimSpace(outputPath) == "" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				target, err := config.ExpandPath(outputPath)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
					return fmt.Errorf("create export directory: %w", err)
				}
				if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d workouts to %s\n", len(history), target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json or yaml)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func encodeHistory(resp api.HistoryResponse, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(historyDocument{History: resp.History}); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	}
	return buf.Bytes(), nil
}

type historyDocument struct {
	History []storage.WorkoutSummary `yaml:"history"`
}
