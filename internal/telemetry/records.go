// Package telemetry parses and summarizes the JSONL telemetry stream
// emitted by the training and evaluation loops.
package telemetry

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/noah-ing/Agent0/internal/types"
)

// Record is a single telemetry event: a flat map of metric keys to
// values. Non-numeric values are preserved but ignored by the rollups.
type Record map[string]any

// LoadRecords reads a telemetry JSONL file. Blank lines and lines that
// fail to decode are skipped; a partially corrupt log still summarizes.
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewErrorf(types.REPORT_TELEMETRY_EMPTY, "telemetry log %s not found", path)
		}
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	// Rollout records can carry full trajectories; allow long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// numericValue extracts a float64 from a decoded JSON value.
func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
