package report

import (
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strings"

	"github.com/noah-ing/Agent0/internal/telemetry"
)

// Metadata carries the run-level inputs that cannot be derived from
// telemetry: names, dates, eval accuracies, and operator notes.
type Metadata struct {
	Date          string
	RunName       string
	TelemetryPath string
	GitSHA        string
	Datasets      []string

	CurriculumBatch int
	Tasks           []string
	TraceFile       string
	TRLStatus       string

	EvalSuite string
	GSM8KAcc  *float64
	MathAcc   *float64
	BBHAcc    *float64

	Wins     string
	Issues   string
	NextStep string
}

// DefaultGitSHA resolves the short HEAD SHA of the working tree,
// returning "unknown" when git is unavailable or the directory is not a
// repository.
func DefaultGitSHA() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "unknown"
	}
	return sha
}

// BuildPlaceholders assembles the full replacement map for the iteration
// report template from telemetry stats, band thresholds, and metadata.
func BuildPlaceholders(meta Metadata, stats telemetry.Stats, bandLow, bandHigh float64) map[string]string {
	gitSHA := meta.GitSHA
	if gitSHA == "" {
		gitSHA = DefaultGitSHA()
	}

	datasets := "N/A"
	if len(meta.Datasets) > 0 {
		datasets = strings.Join(meta.Datasets, ", ")
	}

	task1, task2 := "(add example)", "(add example)"
	if len(meta.Tasks) > 0 {
		task1 = meta.Tasks[0]
	}
	if len(meta.Tasks) > 1 {
		task2 = meta.Tasks[1]
	}

	traceFile := meta.TraceFile
	if traceFile == "" {
		traceFile = "(attach rollout file)"
	}

	trlStatus := meta.TRLStatus
	if trlStatus == "" {
		trlStatus = "not configured"
	}

	curriculumBatch := meta.CurriculumBatch
	if curriculumBatch == 0 {
		curriculumBatch = stats.Counts["curriculum/reward"]
	}

	grpoMean, grpoMeanOK := stats.Means["curriculum/reward"]
	grpoStd, grpoStdOK := stats.Stds["curriculum/reward"]
	adpoMean, adpoMeanOK := stats.Means["executor/adv_scaled"]
	adpoStd, adpoStdOK := stats.Stds["executor/adv_scaled"]
	judgePass, judgePassOK := stats.Derived["judge/pass_rate"]
	meanTurns, meanTurnsOK := stats.Means["rollout/turns"]

	var p50Tools, p90Tools string
	if pct, ok := stats.PercentileStats["rollout/tool_events"]; ok {
		p50Tools = formatFloat(pct.P50, 2)
		p90Tools = formatFloat(pct.P90, 2)
	} else {
		p50Tools, p90Tools = "N/A", "N/A"
	}

	return map[string]string{
		"DATE":              meta.Date,
		"RUN_NAME":          meta.RunName,
		"TELEMETRY_PATH":    meta.TelemetryPath,
		"GIT_SHA":           gitSHA,
		"DATASETS":          datasets,
		"CURRICULUM_BATCH":  formatInt(float64(curriculumBatch)),
		"MEAN_REWARD":       formatOptFloat(grpoMean, grpoMeanOK, 4),
		"TASK_1":            task1,
		"TASK_2":            task2,
		"FRONTIER_ACCEPTED": formatInt(stats.Totals["frontier/accepted"]),
		"FRONTIER_TOTAL":    formatInt(float64(stats.Counts["frontier/consistency"])),
		"FILTER_LOW":        formatFloat(bandLow, 2),
		"FILTER_HIGH":       formatFloat(bandHigh, 2),
		"CONSISTENCY_BANDS": consistencyBands(stats, bandLow, bandHigh),
		"TOOL_USAGE":        toolUsage(stats),
		"JUDGE_PASS_RATE":   formatOptFloat(judgePass, judgePassOK, 4),
		"REJECTIONS":        rejectionSummary(stats),
		"MEAN_TURNS":        formatOptFloat(meanTurns, meanTurnsOK, 2),
		"P50_TOOLS":         p50Tools,
		"P90_TOOLS":         p90Tools,
		"TRACE_FILE":        traceFile,
		"GRPO_MEAN":         formatOptFloat(grpoMean, grpoMeanOK, 4),
		"GRPO_STD":          formatOptFloat(grpoStd, grpoStdOK, 4),
		"ADPO_MEAN":         formatOptFloat(adpoMean, adpoMeanOK, 4),
		"ADPO_STD":          formatOptFloat(adpoStd, adpoStdOK, 4),
		"TRL_STATUS":        trlStatus,
		"EVAL_SUITE":        meta.EvalSuite,
		"GSM8K_ACC":         formatAccuracy(meta.GSM8KAcc),
		"MATH_ACC":          formatAccuracy(meta.MathAcc),
		"BBH_ACC":           formatAccuracy(meta.BBHAcc),
		"WINS":              orDefault(meta.Wins, "TBD"),
		"ISSUES":            orDefault(meta.Issues, "TBD"),
		"NEXT_STEP":         orDefault(meta.NextStep, "TBD"),
	}
}

// consistencyBands formats the curriculum/p_hat distribution around the
// self-consistency band thresholds.
func consistencyBands(stats telemetry.Stats, low, high float64) string {
	values := stats.Series["curriculum/p_hat"]
	if len(values) == 0 {
		return "N/A"
	}
	band := telemetry.SummarizeBand(values, low, high)
	return fmt.Sprintf(
		"low < %.2f: %d/%d (%.1f%%) | band [%.2f,%.2f]: %d/%d (%.1f%%) | high > %.2f: %d/%d (%.1f%%)",
		band.Low, band.BelowCount, band.Total, band.BelowPct,
		band.Low, band.High, band.InBandCount, band.Total, band.InBandPct,
		band.High, band.AboveCount, band.Total, band.AbovePct,
	)
}

// toolUsage formats the executor/tool_calls_avg series into an
// avg/p50/p90 summary line.
func toolUsage(stats telemetry.Stats) string {
	values := stats.Series["executor/tool_calls_avg"]
	if len(values) == 0 {
		return "N/A"
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))
	return fmt.Sprintf("avg=%.2f, p50=%.2f, p90=%.2f (n=%d)",
		mean, telemetry.Percentile(sorted, 50), telemetry.Percentile(sorted, 90), len(sorted))
}

func rejectionSummary(stats telemetry.Stats) string {
	repetition := formatInt(stats.Totals["frontier/rejected_repetition"])
	outOfBand := formatInt(float64(stats.Counts["frontier/rejected_consistency"]))
	return fmt.Sprintf("repetition=%s, out-of-band=%s", repetition, outOfBand)
}

func formatFloat(value float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, value)
}

func formatOptFloat(value float64, ok bool, precision int) string {
	if !ok {
		return "N/A"
	}
	return formatFloat(value, precision)
}

func formatAccuracy(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return formatFloat(*value, 2)
}

func formatInt(value float64) string {
	return fmt.Sprintf("%d", int(math.Round(value)))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
