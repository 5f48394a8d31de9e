package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"liftplan/internal/api"
	"liftplan/internal/daemonrun"
	"liftplan/internal/storage"
)

func newPreferencesCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:     "preferences",
		Aliases: []string{"prefs"},
		Short:   "Show or update the saved preferences",
	}

	prefsCmd.AddCommand(newPreferencesShowCommand(ctx))
	prefsCmd.AddCommand(newPreferencesSetCommand(ctx))

	return prefsCmd
}

func newPreferencesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				prefs, err := c.Store.Preferences(cmd.Context())
				if err != nil {
					return fmt.Errorf("load preferences: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, api.NewPreferencesResponse(prefs))
				}
				out := cmd.OutOrStdout()
				if len(prefs) == 0 {
					fmt.Fprintln(out, "No preferences saved")
					return nil
				}
				for _, line := range preferenceLines(prefs) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print preferences as JSON")
	return cmd
}

// preferenceLines renders "Training Days: 4" style lines sorted by key.
func preferenceLines(prefs storage.Preferences) []string {
	caser := cases.Title(language.English)
	keys := slices.Sorted(maps.Keys(prefs))
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		label := caser.String(strings.NewReplacer("_", " ", "-", " ").Replace(key))
		lines = append(lines, fmt.Sprintf("%s%s: %s", statusIndent, label, prefs[key]))
	}
	return lines
}

func newPreferencesSetCommand(ctx *commandContext) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "set key=value...",
		Short: "Update preferences; an empty value removes the key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseKeyValues(args)
			if err != nil {
				return err
			}
			return ctx.withComponents(cmd, func(c *daemonrun.Components) error {
				current, err := c.Store.Preferences(cmd.Context())
				if err != nil {
					return fmt.Errorf("load preferences: %w", err)
				}
				next := mergePreferences(current, updates, replace)

				diff, err := preferencesDiff(current, next)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if diff == "" {
					fmt.Fprintln(out, "Preferences unchanged")
					return nil
				}
				fmt.Fprint(out, diff)

				if _, err := c.Store.SavePreferences(cmd.Context(), next); err != nil {
					return fmt.Errorf("save preferences: %w", err)
				}
				fmt.Fprintln(out, "Preferences saved")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the whole document instead of merging")
	return cmd
}

func mergePreferences(current storage.Preferences, updates map[string]string, replace bool) storage.Preferences {
	next := storage.Preferences{}
	if !replace {
		maps.Copy(next, current)
	}
	for key, value := range updates {
		if value == "" {
			delete(next, key)
			continue
		}
		next[key] = value
	}
	return next
}

func preferencesDiff(before, after storage.Preferences) (string, error) {
	a, err := marshalPreferences(before)
	if err != nil {
		return "", err
	}
	b, err := marshalPreferences(after)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "preferences (saved)",
		ToFile:   "preferences (updated)",
		Context:  3,
	})
}

func marshalPreferences(prefs storage.Preferences) (string, error) {
	if prefs == nil {
		prefs = storage.Preferences{}
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode preferences: %w", err)
	}
	return string(data) + "\n", nil
}
