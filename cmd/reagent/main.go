package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hession/reagent/internal/cli"
	"github.com/hession/reagent/internal/config"
	"github.com/hession/reagent/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version = cli.Version
)

type rootFlags struct {
	configDir     string
	envFile       string
	maxIterations int
	verbose       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "reagent [question]",
		Short: "reagent - a ReAct agent for the terminal",
		Long: `reagent answers a question by letting a language model reason step by step
and call tools until it reaches a final answer.

Tools:
  • get_text_length - count the characters of a text
  • generate_text   - write a short paragraph about a topic

The question is read interactively when none is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.configDir != "" {
				config.SetConfigDir(flags.configDir)
			}
			return config.LoadDotEnv(flags.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = cli.Run(ctx, cfg, cli.Options{
				Question:      strings.Join(args, " "),
				MaxIterations: flags.maxIterations,
				Verbose:       flags.verbose,
				Out:           cmd.OutOrStdout(),
			})
			if err != nil {
				logger.Error("Run failed: %v", err)
			}
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default ./config)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.Flags().IntVar(&flags.maxIterations, "max-iterations", 0, "override agent.max_iterations")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "print the raw model output of every step")

	// config subcommand
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.String())

			path, _ := config.ConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "\nConfig file path: %s\n", path)
			return nil
		},
	}

	// tools subcommand
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the agent can call",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return cli.ListTools(cmd.OutOrStdout(), cfg)
		},
	}

	// version subcommand
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reagent v%s\n", version)
		},
	}

	rootCmd.AddCommand(configCmd, toolsCmd, versionCmd)
	return rootCmd
}

// loadConfig loads the configuration and starts file logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		LogDir:     config.LogDir(),
		Level:      level,
		MaxDays:    cfg.Logging.MaxDays,
		ConsoleOut: cfg.Logging.Console,
	}); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	logConfigInfo(cfg)
	return cfg, nil
}

// logConfigInfo records the effective settings, API key redacted
func logConfigInfo(cfg *config.Config) {
	apiKey := "(not configured)"
	if cfg.Model.APIKey != "" {
		if len(cfg.Model.APIKey) > 8 {
			apiKey = cfg.Model.APIKey[:8] + "..."
		} else {
			apiKey = "***"
		}
	}

	logger.Info("reagent v%s starting", version)
	logger.Info("Model: %s at %s (api_key=%s, temperature=%.1f, max_tokens=%d, stream=%v)",
		cfg.Model.Model, cfg.Model.BaseURL, apiKey, cfg.Model.Temperature, cfg.Model.MaxTokens, cfg.Model.Stream)
	logger.Info("Generation: temperature=%.1f, max_tokens=%d", cfg.Generation.Temperature, cfg.Generation.MaxTokens)
	logger.Info("Agent: max_iterations=%d, max_duration_seconds=%d, stop=%q",
		cfg.Agent.MaxIterations, cfg.Agent.MaxDurationSeconds, cfg.Agent.Stop)
}
