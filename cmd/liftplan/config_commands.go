package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"liftplan/internal/config"
	"liftplan/internal/daemonrun"
)

const llmCheckTimeout = 30 * time.Second

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set llm.api_key (or export OPENAI_API_KEY) before generating plans.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and report its effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printLines(out, renderSectionHeader("Configuration", colorize)...)
			if ctx.configExists {
				printLines(out, renderStatusLine("Config file", statusOK, ctx.configPath, colorize))
			} else {
				printLines(out, renderStatusLine("Config file", statusInfo, ctx.configPath+" (not found; defaults used)", colorize))
			}
			printLines(out,
				renderStatusLine("Listen address", statusInfo, cfg.Server.Bind, colorize),
				renderStatusLine("Data directory", statusOK, cfg.Storage.DataDir, colorize),
				publicDirLine(cfg, colorize),
			)
			if cfg.HasLLMCredentials() {
				printLines(out, renderStatusLine("LLM API key", statusOK, "configured (model "+cfg.LLM.Model+")", colorize))
			} else {
				printLines(out, renderStatusLine("LLM API key", statusWarn, "missing; set OPENAI_API_KEY or llm.api_key", colorize))
			}

			if checkLLM {
				if err := checkLLMEndpoint(cmd, ctx, cfg); err != nil {
					printLines(out, renderStatusLine("LLM endpoint", statusError, err.Error(), colorize))
					return fmt.Errorf("llm health check failed: %w", err)
				}
				printLines(out, renderStatusLine("LLM endpoint", statusOK, "reachable", colorize))
			}

			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Send a probe request to the LLM endpoint")
	return cmd
}

func publicDirLine(cfg *config.Config, colorize bool) string {
	info, err := os.Stat(cfg.Server.PublicDir)
	if err != nil || !info.IsDir() {
		return renderStatusLine("Public directory", statusWarn, cfg.Server.PublicDir+" (missing; static files disabled)", colorize)
	}
	return renderStatusLine("Public directory", statusOK, cfg.Server.PublicDir, colorize)
}

func checkLLMEndpoint(cmd *cobra.Command, cc *commandContext, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), llmCheckTimeout)
	defer cancel()
	planner := daemonrun.NewPlanner(cfg, cc.cliLogger(cmd.ErrOrStderr()))
	return planner.HealthCheck(ctx)
}
