package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/cmd/agent0/internal"
	"github.com/noah-ing/Agent0/internal/driver"
	"github.com/noah-ing/Agent0/internal/monitor"
	"github.com/noah-ing/Agent0/internal/promote"
)

var evalFlags struct {
	suite      string
	datasets   []string
	workDir    string
	mode       string
	maxWorkers int
	reuse      string
	debug      bool
	dryRun     bool
	envKey     string
	extraArgs  []string
	doMonitor  bool
	doPromote  bool
	runName    string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run an OpenCompass evaluation suite",
	Long: `Launch OpenCompass against the configured model endpoint,
streaming its output and tailing inference logs for progress summaries.

The evaluation subprocess owns the run; agent0 never reinterprets its
failures. Use --dry-run to print the command without launching.`,
	Example: `  agent0 eval --suite math-lite
  agent0 eval --suite math-heavy --max-workers 4
  agent0 eval --datasets gsm8k_gen_1d7fe4 --mode infer
  agent0 eval --suite math-lite --promote`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalFlags.suite, "suite", "", "Dataset suite (math-lite|math-heavy)")
	evalCmd.Flags().StringSliceVar(&evalFlags.datasets, "datasets", nil, "Override suite with explicit dataset config names")
	evalCmd.Flags().StringVar(&evalFlags.workDir, "work-dir", "", "Directory for OpenCompass outputs")
	evalCmd.Flags().StringVar(&evalFlags.mode, "mode", "all", "OpenCompass mode (all|infer|eval|viz)")
	evalCmd.Flags().IntVar(&evalFlags.maxWorkers, "max-workers", 0, "Max concurrent workers (default from config)")
	evalCmd.Flags().StringVar(&evalFlags.reuse, "reuse", "", "Reuse an existing work-dir timestamp")
	evalCmd.Flags().BoolVar(&evalFlags.debug, "debug", false, "Run OpenCompass in single-process debug mode")
	evalCmd.Flags().BoolVar(&evalFlags.dryRun, "dry-run", false, "Print the command without launching")
	evalCmd.Flags().StringVar(&evalFlags.envKey, "env-key", "", "Env var the eval API key is read from (default AGENT0_EVAL_API_KEY)")
	evalCmd.Flags().StringSliceVar(&evalFlags.extraArgs, "extra-args", nil, "Extra arguments forwarded verbatim to OpenCompass")
	evalCmd.Flags().BoolVar(&evalFlags.doMonitor, "monitor", false, "Watch the run for stalls and warn when progress stops")
	evalCmd.Flags().BoolVar(&evalFlags.doPromote, "promote", false, "Promote results to reports/ after a successful run")
	evalCmd.Flags().StringVar(&evalFlags.runName, "run-name", "", "Report name used with --promote")
}

func runEval(cmd *cobra.Command, args []string) error {
	runner := driver.NewRunner(cfg, cmd.OutOrStdout())

	watchCtx, stopWatch := context.WithCancel(cmd.Context())
	defer stopWatch()
	var watchDone chan struct{}

	opts := driver.Options{
		Suite:      evalFlags.suite,
		Datasets:   evalFlags.datasets,
		WorkDir:    evalFlags.workDir,
		Mode:       evalFlags.mode,
		MaxWorkers: evalFlags.maxWorkers,
		Reuse:      evalFlags.reuse,
		Debug:      evalFlags.debug,
		DryRun:     evalFlags.dryRun,
		EnvKey:     evalFlags.envKey,
		ExtraArgs:  evalFlags.extraArgs,
	}
	if evalFlags.doMonitor && !evalFlags.dryRun {
		opts.OnExpFolder = func(dir string) {
			watchDone = make(chan struct{})
			go func() {
				defer close(watchDone)
				watchForStalls(watchCtx, cmd, dir)
			}()
		}
	}

	result, err := runner.Run(watchCtx, opts)
	stopWatch()
	if watchDone != nil {
		<-watchDone
	}
	if err != nil {
		return err
	}

	if evalFlags.doPromote && !evalFlags.dryRun {
		expFolder := result.ExpFolder
		if expFolder == "" {
			return internal.NewCLIError(internal.ExitPromotionFailed,
				"cannot promote: no experiment folder was announced by the run")
		}
		cmd.Printf("[eval] promoting results from %s\n", expFolder)

		promoted, err := promote.Promote(promote.Options{
			WorkDir:    expFolder,
			RunName:    evalFlags.runName,
			EvalsDir:   filepath.Join(cfg.Reports.Dir, "evals"),
			ReadmePath: cfg.Reports.Readme,
		})
		if err != nil {
			return err
		}
		cmd.Printf("Copied summary to %s\n", promoted.DestPath)
		cmd.Printf("Updated %s with new benchmark snapshot\n", cfg.Reports.Readme)
	}

	return nil
}

// watchForStalls runs a read-only stall watcher alongside the eval
// subprocess, warning when progress stops. It never cancels the run.
func watchForStalls(ctx context.Context, cmd *cobra.Command, workDir string) {
	mon := monitor.New(workDir,
		monitor.WithRefresh(cfg.Monitor.Refresh),
		monitor.WithStallThreshold(cfg.Monitor.StallThreshold))

	wasStalled := false
	for snap := range mon.Watch(ctx, true) {
		if snap.Stalled() && !wasStalled {
			cmd.Printf("[monitor] WARNING: no progress observed for over %s\n", cfg.Monitor.StallThreshold)
		} else if wasStalled && !snap.Stalled() {
			cmd.Println("[monitor] progress resumed")
		}
		wasStalled = snap.Stalled()
	}
}
