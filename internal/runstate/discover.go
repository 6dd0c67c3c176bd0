package runstate

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/noah-ing/Agent0/internal/types"
)

// runTimestampPattern matches the platform's run directory naming,
// e.g. "20260215_094233".
var runTimestampPattern = regexp.MustCompile(`(\d{8})_(\d{6})`)

// FindLatestRun locates the most recent run directory under baseDir.
// A run directory is any directory containing logs/infer. Candidates are
// ordered by their timestamped base name, newest first.
func FindLatestRun(baseDir string) (string, error) {
	var candidates []string

	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() && filepath.Base(path) == "infer" && filepath.Base(filepath.Dir(path)) == "logs" {
			candidates = append(candidates, filepath.Dir(filepath.Dir(path)))
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return "", types.WrapError(types.RUN_SCAN_FAILED, "failed to scan for runs", err)
	}

	if len(candidates) == 0 {
		return "", types.NewErrorf(types.RUN_NOT_FOUND, "no runs found under %s", baseDir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return filepath.Base(candidates[i]) > filepath.Base(candidates[j])
	})
	return candidates[0], nil
}

// RunDate extracts the run date from a timestamped run directory name.
// It falls back to now when the name carries no timestamp.
func RunDate(workDir string, now time.Time) time.Time {
	match := runTimestampPattern.FindStringSubmatch(filepath.Base(workDir))
	if match == nil {
		return now
	}
	parsed, err := time.Parse("20060102", match[1])
	if err != nil {
		return now
	}
	return parsed
}

// NewestMTime walks the run directory and returns the most recent file
// modification time. Used by the stall detector as a coarse activity
// signal alongside parsed progress.
func NewestMTime(workDir string) (time.Time, error) {
	var newest time.Time

	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return newest, nil
}
