package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-ing/Agent0/internal/types"
)

func writeTelemetry(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadRecords(t *testing.T) {
	path := writeTelemetry(t, []string{
		`{"curriculum/reward": 0.5, "loop/iteration": 1}`,
		``,
		`not json at all`,
		`{"curriculum/reward": 0.7}`,
	})

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoadRecords_Missing(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.REPORT_TELEMETRY_EMPTY))
}

func TestSummarize_MeansAndStds(t *testing.T) {
	records := []Record{
		{"curriculum/reward": 0.2},
		{"curriculum/reward": 0.4},
		{"curriculum/reward": 0.6},
	}

	stats := Summarize(records)

	assert.InDelta(t, 0.4, stats.Means["curriculum/reward"], 1e-9)
	assert.Equal(t, 3, stats.Counts["curriculum/reward"])
	assert.InDelta(t, 1.2, stats.Totals["curriculum/reward"], 1e-9)
	// Population std of {0.2, 0.4, 0.6}.
	assert.InDelta(t, 0.16329, stats.Stds["curriculum/reward"], 1e-4)
}

func TestSummarize_SingleObservationHasNoStd(t *testing.T) {
	stats := Summarize([]Record{{"executor/adv_scaled": 1.5}})

	assert.InDelta(t, 1.5, stats.Means["executor/adv_scaled"], 1e-9)
	_, hasStd := stats.Stds["executor/adv_scaled"]
	assert.False(t, hasStd)
}

func TestSummarize_IgnoresUnknownPrefixesAndNonNumerics(t *testing.T) {
	stats := Summarize([]Record{
		{"other/metric": 3.0, "curriculum/note": "text", "curriculum/reward": 1.0},
	})

	_, ok := stats.Means["other/metric"]
	assert.False(t, ok)
	_, ok = stats.Means["curriculum/note"]
	assert.False(t, ok)
	assert.Contains(t, stats.Means, "curriculum/reward")
}

func TestSummarize_JudgePassRate(t *testing.T) {
	records := []Record{
		{"judge/is_valid": 1.0},
		{"judge/is_valid": 0.0},
		{"judge/is_valid": true},
		{"judge/is_valid": 1.0},
	}

	stats := Summarize(records)
	assert.InDelta(t, 0.75, stats.Derived["judge/pass_rate"], 1e-9)
}

func TestSummarize_Percentiles(t *testing.T) {
	var records []Record
	for i := 1; i <= 10; i++ {
		records = append(records, Record{"rollout/turns": float64(i)})
	}

	stats := Summarize(records)
	pct, ok := stats.PercentileStats["rollout/turns"]
	require.True(t, ok)
	assert.InDelta(t, 5.5, pct.Mean, 1e-9)
	assert.InDelta(t, 5.5, pct.P50, 1e-9)
	assert.InDelta(t, 9.1, pct.P90, 1e-9)
}

func TestSummarize_Series(t *testing.T) {
	records := []Record{
		{"curriculum/p_hat": 0.1},
		{"curriculum/p_hat": 0.5},
		{"curriculum/p_hat": 0.9},
	}

	stats := Summarize(records)
	assert.Equal(t, []float64{0.1, 0.5, 0.9}, stats.Series["curriculum/p_hat"])
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 90))
	assert.InDelta(t, 2.5, Percentile([]float64{1, 2, 3, 4}, 50), 1e-9)
	assert.InDelta(t, 4.0, Percentile([]float64{1, 2, 3, 4}, 100), 1e-9)
}

func TestSummarizeBand(t *testing.T) {
	values := []float64{0.1, 0.2, 0.5, 0.7, 0.95}

	band := SummarizeBand(values, 0.3, 0.8)
	assert.Equal(t, 2, band.BelowCount)
	assert.Equal(t, 2, band.InBandCount)
	assert.Equal(t, 1, band.AboveCount)
	assert.InDelta(t, 40.0, band.BelowPct, 1e-9)
	assert.InDelta(t, 40.0, band.InBandPct, 1e-9)
	assert.InDelta(t, 20.0, band.AbovePct, 1e-9)
}

func TestSummarizeBand_SwapsInvertedThresholds(t *testing.T) {
	band := SummarizeBand([]float64{0.5}, 0.8, 0.3)
	assert.Equal(t, 0.3, band.Low)
	assert.Equal(t, 0.8, band.High)
	assert.Equal(t, 1, band.InBandCount)
}

func TestSummarizeBand_Empty(t *testing.T) {
	band := SummarizeBand(nil, 0.3, 0.8)
	assert.Equal(t, 0, band.Total)
	assert.Equal(t, 0.0, band.BelowPct)
}

func TestExportSummary(t *testing.T) {
	stats := Summarize([]Record{
		{"curriculum/reward": 0.5, "judge/is_valid": 1.0, "rollout/turns": 3.0},
		{"curriculum/reward": 0.7, "judge/is_valid": 0.0, "rollout/turns": 5.0},
	})
	band := SummarizeBand([]float64{0.4, 0.6}, 0.3, 0.8)

	path := filepath.Join(t.TempDir(), "summary", "rollup.jsonl")
	require.NoError(t, ExportSummary(path, stats, &band))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	typesSeen := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry ExportEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		typesSeen[entry.Type]++
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, 2, typesSeen[EntryTypeMean])
	assert.Equal(t, 1, typesSeen[EntryTypePercentile])
	assert.Equal(t, 1, typesSeen[EntryTypeDerived])
	assert.Equal(t, 1, typesSeen[EntryTypeBand])

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
