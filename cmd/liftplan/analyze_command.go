package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"liftplan/internal/api"
	"liftplan/internal/daemonrun"
	"liftplan/internal/storage"
)

type analyzeOutput struct {
	api.AnalyzeResponse
	Saved *storage.WorkoutSummary `json:"saved,omitempty"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var prefPairs []string
	var save bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze URL...",
		Short: "Scrape 1-5 workout pages and generate a plan",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args) > api.MaxURLs {
				return errors.New(api.MsgURLCount)
			}
			for _, arg := range args {
				if !api.ValidURL(arg) {
					return fmt.Errorf("%s (%s)", api.MsgInvalidURL, arg)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := parseKeyValues(prefPairs)
			if err != nil {
				return err
			}
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				service := api.NewAnalyzeService(c.Scraper, c.Planner)
				resp, err := service.Analyze(cmd.Context(), api.AnalyzeRequest{URLs: args, Preferences: prefs})
				if err != nil {
					return fmt.Errorf("analyze: %w", err)
				}

				output := analyzeOutput{AnalyzeResponse: resp}
				if save {
					history, err := c.Store.SaveWorkoutSummary(cmd.Context(), storage.WorkoutSummary{
						Plan:    resp.Plan,
						Summary: resp.Summary,
					})
					if err != nil {
						return fmt.Errorf("save summary: %w", err)
					}
					output.Saved = &history[0]
				}

				if jsonOutput {
					return writeJSON(cmd, output)
				}
				printAnalysis(cmd, output)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&prefPairs, "pref", "p", nil, "Preference as key=value (repeatable)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the plan and summary to history")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func printAnalysis(cmd *cobra.Command, output analyzeOutput) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	printLines(out, renderSectionHeader("Sources", colorize)...)
	for i, result := range output.ProcessedURLs {
		label := fmt.Sprintf("URL %d", i+1)
		if result.Success {
			printLines(out, renderStatusLine(label, statusOK, result.URL, colorize))
		} else {
			printLines(out, renderStatusLine(label, statusError, result.URL+" ("+result.Error+")", colorize))
		}
	}

	fmt.Fprintln(out)
	printLines(out, renderSectionHeader("Plan", colorize)...)
	fmt.Fprintln(out, strings.TrimSpace(output.Plan))
	fmt.Fprintln(out)
	printLines(out, renderSectionHeader("Summary", colorize)...)
	fmt.Fprintln(out, strings.TrimSpace(output.Summary))

	if output.Saved != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Saved to history as %d\n", output.Saved.Timestamp)
	}
}
