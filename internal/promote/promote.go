package promote

import (
	"os"
	"path/filepath"
	"time"

	"github.com/noah-ing/Agent0/internal/runstate"
)

// Options controls a promotion run.
type Options struct {
	// WorkDir is the OpenCompass run directory containing summary/.
	WorkDir string

	// RunName overrides the archived report name; defaults to the
	// work-dir base name.
	RunName string

	// EvalsDir is the destination directory for archived summaries.
	EvalsDir string

	// ReadmePath is the README to refresh; empty skips the rewrite.
	ReadmePath string

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Result describes what a promotion produced.
type Result struct {
	SummaryPath string
	DestPath    string
	RunDate     string
	Scores      map[string]Score
}

// Promote archives the run summary byte-for-byte into the evals
// directory and refreshes the README benchmark snapshot.
func Promote(opts Options) (*Result, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	summaryPath, err := FindSummary(opts.WorkDir)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, err
	}
	scores := ParseScores(string(content))

	runName := opts.RunName
	if runName == "" {
		runName = filepath.Base(opts.WorkDir)
	}
	runDate := runstate.RunDate(opts.WorkDir, now()).Format("2006-01-02")

	destPath := filepath.Join(opts.EvalsDir, runName+".md")
	if err := copyFile(summaryPath, destPath); err != nil {
		return nil, err
	}

	if opts.ReadmePath != "" {
		table := FormatSnapshotTable(scores, runDate)
		if err := RewriteReadme(opts.ReadmePath, table); err != nil {
			return nil, err
		}
	}

	return &Result{
		SummaryPath: summaryPath,
		DestPath:    destPath,
		RunDate:     runDate,
		Scores:      scores,
	}, nil
}
