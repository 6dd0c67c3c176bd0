package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/internal/report"
)

var reportFlags struct {
	telemetry       string
	template        string
	output          string
	runName         string
	date            string
	gitSHA          string
	datasets        []string
	curriculumBatch int
	tasks           []string
	traceFile       string
	trlStatus       string
	evalSuite       string
	gsm8kAcc        float64
	mathAcc         float64
	bbhAcc          float64
	wins            string
	issues          string
	nextStep        string
	executorConfig  string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an iteration report from telemetry logs",
	Long: `Fuse telemetry rollups with run metadata into a markdown iteration
report. Rendering fails if any {{TOKEN}} placeholder is left unresolved.`,
	Example: `  agent0 report --telemetry reports/telemetry.jsonl
  agent0 report --telemetry reports/telemetry.jsonl --run-name iter_004 --gsm8k-acc 61.25`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.telemetry, "telemetry", "", "Path to telemetry JSONL file (required)")
	f.StringVar(&reportFlags.template, "template", "", "Report template path (default from config)")
	f.StringVar(&reportFlags.output, "output", "", "Destination markdown file")
	f.StringVar(&reportFlags.runName, "run-name", "iter_000", "Run name for the report")
	f.StringVar(&reportFlags.date, "date", "", "Report date (default today)")
	f.StringVar(&reportFlags.gitSHA, "git-sha", "", "Git SHA recorded in the report (default from git)")
	f.StringSliceVar(&reportFlags.datasets, "datasets", nil, "Datasets evaluated this iteration")
	f.IntVar(&reportFlags.curriculumBatch, "curriculum-batch", 0, "Curriculum batch size override")
	f.StringSliceVar(&reportFlags.tasks, "tasks", nil, "Notable curriculum seeds (ordered)")
	f.StringVar(&reportFlags.traceFile, "trace-file", "", "Relative path to exemplar rollout JSON")
	f.StringVar(&reportFlags.trlStatus, "trl-status", "not configured", "Training-loop status line")
	f.StringVar(&reportFlags.evalSuite, "eval-suite", "math-lite", "Evaluation suite name")
	f.Float64Var(&reportFlags.gsm8kAcc, "gsm8k-acc", -1, "GSM8K accuracy")
	f.Float64Var(&reportFlags.mathAcc, "math-acc", -1, "MATH accuracy")
	f.Float64Var(&reportFlags.bbhAcc, "bbh-acc", -1, "BBH accuracy")
	f.StringVar(&reportFlags.wins, "wins", "TBD", "Wins summary")
	f.StringVar(&reportFlags.issues, "issues", "TBD", "Issues summary")
	f.StringVar(&reportFlags.nextStep, "next-step", "TBD", "Next step summary")
	f.StringVar(&reportFlags.executorConfig, "executor-config", "", "Executor YAML with band thresholds (default from config)")
	reportCmd.MarkFlagRequired("telemetry")
}

func runReport(cmd *cobra.Command, args []string) error {
	date := reportFlags.date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	template := reportFlags.template
	if template == "" {
		template = cfg.Reports.Template
	}
	output := reportFlags.output
	if output == "" {
		output = filepath.Join(cfg.Reports.Dir, reportFlags.runName+".md")
	}
	executorConfig := reportFlags.executorConfig
	if executorConfig == "" {
		executorConfig = cfg.Reports.ExecutorConfig
	}

	result, err := report.Generate(report.Options{
		TelemetryPath:  reportFlags.telemetry,
		TemplatePath:   template,
		OutputPath:     output,
		ExecutorConfig: executorConfig,
		Metadata: report.Metadata{
			Date:            date,
			RunName:         reportFlags.runName,
			GitSHA:          reportFlags.gitSHA,
			Datasets:        reportFlags.datasets,
			CurriculumBatch: reportFlags.curriculumBatch,
			Tasks:           reportFlags.tasks,
			TraceFile:       reportFlags.traceFile,
			TRLStatus:       reportFlags.trlStatus,
			EvalSuite:       reportFlags.evalSuite,
			GSM8KAcc:        accuracyFlag(cmd, "gsm8k-acc", reportFlags.gsm8kAcc),
			MathAcc:         accuracyFlag(cmd, "math-acc", reportFlags.mathAcc),
			BBHAcc:          accuracyFlag(cmd, "bbh-acc", reportFlags.bbhAcc),
			Wins:            reportFlags.wins,
			Issues:          reportFlags.issues,
			NextStep:        reportFlags.nextStep,
		},
	})
	if err != nil {
		return err
	}

	cmd.Printf("[report] wrote %s (%d telemetry records)\n", result.OutputPath, result.RecordCount)
	return nil
}

// accuracyFlag returns a pointer only when the flag was set, so unset
// accuracies render as N/A instead of a bogus number.
func accuracyFlag(cmd *cobra.Command, name string, value float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
