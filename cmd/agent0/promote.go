package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/internal/promote"
)

var promoteFlags struct {
	runName string
}

var promoteCmd = &cobra.Command{
	Use:   "promote <work-dir>",
	Short: "Promote finished evaluation results into the reports tree",
	Long: `Copy the run's summary markdown byte-for-byte into reports/evals/ and
refresh the README benchmark snapshot table.`,
	Example: `  agent0 promote outputs/opencompass/20260830_101500
  agent0 promote outputs/opencompass/20260830_101500 --run-name iter_004_math_lite`,
	Args: cobra.ExactArgs(1),
	RunE: runPromote,
}

func init() {
	promoteCmd.Flags().StringVar(&promoteFlags.runName, "run-name", "", "Override name for the archived report file")
}

func runPromote(cmd *cobra.Command, args []string) error {
	result, err := promote.Promote(promote.Options{
		WorkDir:    args[0],
		RunName:    promoteFlags.runName,
		EvalsDir:   filepath.Join(cfg.Reports.Dir, "evals"),
		ReadmePath: cfg.Reports.Readme,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Copied summary to %s\n", result.DestPath)
	cmd.Printf("Updated %s with new benchmark snapshot (%s)\n", cfg.Reports.Readme, result.RunDate)
	return nil
}
