package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Entry types for the summary JSONL export.
const (
	EntryTypeMean       = "mean"
	EntryTypePercentile = "percentile"
	EntryTypeDerived    = "derived"
	EntryTypeBand       = "band"
)

// ExportEntry is a single line in the exported summary JSONL.
type ExportEntry struct {
	// Type indicates the kind of data in this entry.
	Type string `json:"type"`

	// Timestamp is when this entry was created.
	Timestamp time.Time `json:"timestamp"`

	// Key is the metric key the entry describes.
	Key string `json:"key"`

	// Data contains the payload (structure varies by type).
	Data any `json:"data"`
}

// MeanData carries a mean/std/count rollup for one key.
type MeanData struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std,omitempty"`
	Count int     `json:"count"`
}

// ExportSummary writes a summary JSONL file at the specified path.
// Uses the atomic write pattern (write to temp file, then rename) so a
// crashed export never leaves a half-written summary behind.
func ExportSummary(path string, stats Stats, band *BandSummary) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".telemetry-*.jsonl.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err := WriteSummary(tempFile, stats, band); err != nil {
		return err
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tempPath, path, err)
	}

	// Prevent deferred cleanup from removing the renamed file.
	tempFile = nil

	return nil
}

// WriteSummary writes the summary to the provided writer in JSONL
// format. Separated from ExportSummary for easier testing.
func WriteSummary(w io.Writer, stats Stats, band *BandSummary) error {
	encoder := json.NewEncoder(w)
	now := time.Now()

	for key, mean := range stats.Means {
		entry := ExportEntry{
			Type:      EntryTypeMean,
			Timestamp: now,
			Key:       key,
			Data: MeanData{
				Mean:  mean,
				Std:   stats.Stds[key],
				Count: stats.Counts[key],
			},
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode mean entry for %s: %w", key, err)
		}
	}

	for key, pct := range stats.PercentileStats {
		entry := ExportEntry{
			Type:      EntryTypePercentile,
			Timestamp: now,
			Key:       key,
			Data:      pct,
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode percentile entry for %s: %w", key, err)
		}
	}

	for key, value := range stats.Derived {
		entry := ExportEntry{
			Type:      EntryTypeDerived,
			Timestamp: now,
			Key:       key,
			Data:      value,
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode derived entry for %s: %w", key, err)
		}
	}

	if band != nil {
		entry := ExportEntry{
			Type:      EntryTypeBand,
			Timestamp: now,
			Key:       "curriculum/p_hat",
			Data:      band,
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode band entry: %w", err)
		}
	}

	return nil
}
