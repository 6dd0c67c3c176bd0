package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/internal/creds"
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Self-test configured endpoint credentials",
	Long: `Probe the verifier endpoint with a minimal chat completion and the
vLLM endpoint's /models listing. The command fails only when no probe
validates an endpoint; missing configuration is a warning.`,
	RunE: runCreds,
}

func runCreds(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("OPENAI_API_KEY")
	checker := creds.NewChecker(cfg.Endpoints, apiKey)

	results, err := checker.CheckAll(cmd.Context())
	for _, result := range results {
		printProbe(cmd, result)
	}
	return err
}

func printProbe(cmd *cobra.Command, result creds.ProbeResult) {
	label := "[" + result.Status + "]"
	switch result.Status {
	case creds.StatusOK:
		label = color.GreenString("[OK]")
	case creds.StatusWarn, creds.StatusSkip:
		label = color.YellowString("[WARN]")
	case creds.StatusFail:
		label = color.RedString("[FAIL]")
	}
	cmd.Printf("%s %s\n", label, result.Message)
}
