package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/internal/config"
	"github.com/noah-ing/Agent0/internal/observability"
)

// cfg is the loaded harness configuration, populated before any
// subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agent0",
	Short: "Agent0 - Evaluation harness for OpenCompass benchmark runs",
	Long: `Agent0 orchestrates OpenCompass benchmark evaluations of an
OpenAI-compatible model endpoint, monitors long runs from their on-disk
state, promotes finished results into the reports tree, and renders
iteration reports from JSONL telemetry.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs to load configuration.
// A missing config file is not an error: defaults plus environment
// overrides keep every command usable in a fresh checkout.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	// Repo-scoped .env, never overwriting real environment variables.
	if err := config.LoadDotEnv("."); err != nil {
		return err
	}

	homeDir := globalFlags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("AGENT0_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}

	configFile := globalFlags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	loader := config.NewConfigLoader(config.NewValidator())
	loaded, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	cfg = loaded
	configureLogging(cfg)
	return nil
}

// configureLogging installs the default slog handler per the logging
// config. Logs go to stderr so command output stays clean on stdout.
func configureLogging(cfg *config.Config) {
	level := observability.ParseLevel(cfg.Logging.Level)
	if globalFlags.Verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = observability.NewJSONHandler(os.Stderr, level)
	} else {
		handler = observability.NewTextHandler(os.Stderr, level)
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(telemetryCmd)
	rootCmd.AddCommand(credsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// gitSHA is stamped by the Makefile via -ldflags.
var gitSHA = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("agent0 v0.3.0 (%s)\n", gitSHA)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for agent0.

To load completions in your current bash session:

	source <(agent0 completion bash)`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}
