package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/noah-ing/Agent0/internal/telemetry"
	"github.com/noah-ing/Agent0/internal/types"
)

// Options controls a report generation run.
type Options struct {
	TelemetryPath  string
	TemplatePath   string
	OutputPath     string
	ExecutorConfig string
	Metadata       Metadata
}

// Result summarizes a completed generation.
type Result struct {
	OutputPath  string
	RecordCount int
	Stats       telemetry.Stats
}

// Generate renders an iteration report end to end: loads telemetry,
// summarizes it, fills the template, verifies no placeholder survived,
// and writes the output file.
func Generate(opts Options) (*Result, error) {
	records, err := telemetry.LoadRecords(opts.TelemetryPath)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, types.NewErrorf(types.REPORT_TELEMETRY_EMPTY,
			"no telemetry records found at %s", opts.TelemetryPath)
	}
	stats := telemetry.Summarize(records)

	template, err := LoadTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	bandLow, bandHigh, err := LoadFilterBand(opts.ExecutorConfig)
	if err != nil {
		return nil, err
	}

	meta := opts.Metadata
	if meta.TelemetryPath == "" {
		meta.TelemetryPath = opts.TelemetryPath
	}

	content := Render(template, BuildPlaceholders(meta, stats, bandLow, bandHigh))
	if err := Finalize(content); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report %s: %w", opts.OutputPath, err)
	}

	return &Result{
		OutputPath:  opts.OutputPath,
		RecordCount: len(records),
		Stats:       stats,
	}, nil
}
