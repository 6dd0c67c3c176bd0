package main

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/noah-ing/Agent0/cmd/agent0/internal"
	"github.com/noah-ing/Agent0/internal/monitor"
	"github.com/noah-ing/Agent0/internal/runstate"
	"github.com/noah-ing/Agent0/internal/tui"
)

var monitorFlags struct {
	workDir        string
	baseDir        string
	refresh        time.Duration
	stallThreshold time.Duration
	follow         bool
	printMode      bool
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard for a running evaluation",
	Long: `Watch an OpenCompass run from its on-disk inference logs: per-dataset
progress, ETA, and a stall flag when no progress is observed past the
threshold.

Without --work-dir the newest run under --base-dir is monitored. In a
non-interactive terminal (or with --print) a single snapshot is printed
instead of the dashboard.`,
	Example: `  agent0 monitor
  agent0 monitor --work-dir outputs/opencompass/20260830_101500
  agent0 monitor --refresh 10s --stall-threshold 10m --follow
  agent0 monitor --print`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&monitorFlags.workDir, "work-dir", "", "Run directory to monitor")
	monitorCmd.Flags().StringVar(&monitorFlags.baseDir, "base-dir", "", "Base directory to auto-detect the latest run in")
	monitorCmd.Flags().DurationVar(&monitorFlags.refresh, "refresh", 0, "Dashboard refresh cadence (default from config)")
	monitorCmd.Flags().DurationVar(&monitorFlags.stallThreshold, "stall-threshold", 0, "Idle window before a dataset is flagged stalled (default from config)")
	monitorCmd.Flags().BoolVar(&monitorFlags.follow, "follow", false, "Keep the dashboard open after the run completes")
	monitorCmd.Flags().BoolVar(&monitorFlags.printMode, "print", false, "Print one snapshot and exit (headless mode)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	workDir, err := resolveWorkDir()
	if err != nil {
		return err
	}

	refresh := monitorFlags.refresh
	if refresh == 0 {
		refresh = cfg.Monitor.Refresh
	}
	threshold := monitorFlags.stallThreshold
	if threshold == 0 {
		threshold = cfg.Monitor.StallThreshold
	}

	mon := monitor.New(workDir,
		monitor.WithRefresh(refresh),
		monitor.WithStallThreshold(threshold),
	)

	if monitorFlags.printMode || !isTerminalInteractive() {
		snap, err := mon.Observe()
		if err != nil {
			return err
		}
		printSnapshot(cmd.OutOrStdout(), snap)
		if snap.Stalled() {
			return internal.NewCLIError(internal.ExitStalled, "run has stalled")
		}
		return nil
	}

	app := tui.NewApp(mon, refresh, monitorFlags.follow)
	program := tea.NewProgram(app, tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return err
	}

	if snap, ok := app.Snapshot(); ok && snap.Stalled() {
		return internal.NewCLIError(internal.ExitStalled, "run has stalled")
	}
	return nil
}

// resolveWorkDir picks the monitored directory: explicit --work-dir, or
// the newest run under --base-dir (falling back to the configured eval
// work dir).
func resolveWorkDir() (string, error) {
	if monitorFlags.workDir != "" {
		return monitorFlags.workDir, nil
	}
	baseDir := monitorFlags.baseDir
	if baseDir == "" {
		baseDir = cfg.Eval.WorkDir
	}
	return runstate.FindLatestRun(baseDir)
}

// isTerminalInteractive checks if stdout is a terminal.
func isTerminalInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
