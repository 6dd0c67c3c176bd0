package main

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/internal/report"
	"github.com/noah-ing/Agent0/internal/telemetry"
	"github.com/noah-ing/Agent0/internal/tui"
)

var telemetryFlags struct {
	log            string
	executorConfig string
	export         string
	watch          bool
	refresh        time.Duration
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Summarize a telemetry JSONL log",
	Long: `Print mean/std rollups, percentile stats, and the self-consistency
band distribution of a telemetry stream. With --export the summary is
also written as JSONL.

With --watch a live dashboard re-reads the log on an interval and shows
curriculum and executor metrics, tool-event percentiles, and the judge
pass rate. In a non-interactive terminal --watch falls back to a single
summary.`,
	Example: `  agent0 telemetry --log reports/telemetry.jsonl
  agent0 telemetry --log reports/telemetry.jsonl --export reports/summary.jsonl
  agent0 telemetry --watch --refresh 5s`,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().StringVar(&telemetryFlags.log, "log", "", "Telemetry JSONL path (default from config)")
	telemetryCmd.Flags().StringVar(&telemetryFlags.executorConfig, "executor-config", "", "Executor YAML with band thresholds (default from config)")
	telemetryCmd.Flags().StringVar(&telemetryFlags.export, "export", "", "Write the summary as JSONL to this path")
	telemetryCmd.Flags().BoolVar(&telemetryFlags.watch, "watch", false, "Live dashboard that re-reads the log on an interval")
	telemetryCmd.Flags().DurationVar(&telemetryFlags.refresh, "refresh", 0, "Dashboard refresh cadence (default from config)")
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	logPath := telemetryFlags.log
	if logPath == "" {
		logPath = cfg.Telemetry.Log
	}
	executorConfig := telemetryFlags.executorConfig
	if executorConfig == "" {
		executorConfig = cfg.Reports.ExecutorConfig
	}

	if telemetryFlags.watch && isTerminalInteractive() {
		return watchTelemetry(cmd, logPath)
	}

	records, err := telemetry.LoadRecords(logPath)
	if err != nil {
		return err
	}
	stats := telemetry.Summarize(records)

	low, high, err := report.LoadBandThresholds(executorConfig)
	if err != nil {
		return err
	}
	var band *telemetry.BandSummary
	if values := stats.Series["curriculum/p_hat"]; len(values) > 0 {
		b := telemetry.SummarizeBand(values, low, high)
		band = &b
	}

	printStats(cmd, stats, band, len(records))

	if telemetryFlags.export != "" {
		if err := telemetry.ExportSummary(telemetryFlags.export, stats, band); err != nil {
			return err
		}
		cmd.Printf("\n[telemetry] wrote summary to %s\n", telemetryFlags.export)
	}
	return nil
}

// watchTelemetry runs the live dashboard until the user quits.
func watchTelemetry(cmd *cobra.Command, logPath string) error {
	refresh := telemetryFlags.refresh
	if refresh == 0 {
		refresh = cfg.Monitor.Refresh
	}

	app := tui.NewTelemetryApp(logPath, refresh)
	program := tea.NewProgram(app, tea.WithContext(cmd.Context()))
	_, err := program.Run()
	return err
}

func printStats(cmd *cobra.Command, stats telemetry.Stats, band *telemetry.BandSummary, recordCount int) {
	cmd.Printf("records: %d\n\n", recordCount)

	keys := make([]string, 0, len(stats.Means))
	for key := range stats.Means {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		line := fmt.Sprintf("%-32s mean=%.4f", key, stats.Means[key])
		if std, ok := stats.Stds[key]; ok {
			line += fmt.Sprintf(" std=%.4f", std)
		}
		line += fmt.Sprintf(" n=%d", stats.Counts[key])
		cmd.Println(line)
	}

	if len(stats.PercentileStats) > 0 {
		cmd.Println()
		pctKeys := make([]string, 0, len(stats.PercentileStats))
		for key := range stats.PercentileStats {
			pctKeys = append(pctKeys, key)
		}
		sort.Strings(pctKeys)
		for _, key := range pctKeys {
			pct := stats.PercentileStats[key]
			cmd.Printf("%-32s mean=%.2f p50=%.2f p90=%.2f\n", key, pct.Mean, pct.P50, pct.P90)
		}
	}

	if len(stats.Derived) > 0 {
		cmd.Println()
		for key, value := range stats.Derived {
			cmd.Printf("%-32s %.4f\n", key, value)
		}
	}

	if band != nil {
		cmd.Println()
		cmd.Printf("curriculum/p_hat band [%.2f,%.2f]: below %d (%.1f%%) | in %d (%.1f%%) | above %d (%.1f%%)\n",
			band.Low, band.High,
			band.BelowCount, band.BelowPct,
			band.InBandCount, band.InBandPct,
			band.AboveCount, band.AbovePct)
	}
}
