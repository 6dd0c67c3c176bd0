package runstate

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// inferLogDir is where the evaluation platform writes per-dataset
// inference logs, relative to the run directory.
var inferLogDir = filepath.Join("logs", "infer")

// Scanner incrementally reads the inference logs of a single run
// directory and maintains per-dataset progress state.
//
// Scanner is not safe for concurrent use; the monitor serializes calls
// from its polling loop.
type Scanner struct {
	workDir string

	// positions tracks the byte offset consumed per log file.
	positions map[string]int64

	// statuses holds the latest parsed status per dataset name.
	statuses map[string]DatasetStatus

	// lastChange is the newest observed progress or mtime change.
	lastChange time.Time

	// primed is set after the first scan has seeded activity times
	// from the on-disk state.
	primed bool

	now func() time.Time
}

// NewScanner creates a scanner over the given run directory.
func NewScanner(workDir string) *Scanner {
	return &Scanner{
		workDir:   workDir,
		positions: make(map[string]int64),
		statuses:  make(map[string]DatasetStatus),
		now:       time.Now,
	}
}

// WorkDir returns the run directory being scanned.
func (s *Scanner) WorkDir() string {
	return s.workDir
}

// LogRoot returns the inference log directory of the run.
func (s *Scanner) LogRoot() string {
	return filepath.Join(s.workDir, inferLogDir)
}

// HasLogs reports whether the inference log directory exists yet.
// A freshly started run creates it only once inference begins.
func (s *Scanner) HasLogs() bool {
	info, err := os.Stat(s.LogRoot())
	return err == nil && info.IsDir()
}

// Scan reads new bytes from every inference log and updates the
// per-dataset statuses. It returns the current statuses sorted by name.
//
// The first scan seeds activity times from the run directory's file
// mtimes, so attaching to an already-stale run reads stale immediately
// instead of resetting the idle clock.
func (s *Scanner) Scan() ([]DatasetStatus, error) {
	if !s.primed {
		s.primed = true
		if mtime, err := NewestMTime(s.workDir); err == nil {
			s.lastChange = mtime
		}
	}

	logRoot := s.LogRoot()
	if !s.HasLogs() {
		return s.sorted(), nil
	}

	var logFiles []string
	err := filepath.WalkDir(logRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Files can vanish mid-walk while the platform rotates them.
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".out") {
			logFiles = append(logFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(logFiles)

	for _, path := range logFiles {
		s.scanFile(path)
	}

	return s.sorted(), nil
}

// scanFile reads bytes appended to a single log since the last scan and
// folds any progress lines into the dataset status.
func (s *Scanner) scanFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Reset the offset so a recreated file is re-read from the start.
		delete(s.positions, path)
		return
	}

	lastPos, seen := s.positions[path]
	if info.Size() < lastPos {
		// Truncated; start over.
		lastPos = 0
	}
	if info.Size() == lastPos {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	if _, err := f.Seek(lastPos, io.SeekStart); err != nil {
		return
	}

	chunk, err := io.ReadAll(f)
	if err != nil && len(chunk) == 0 {
		return
	}
	s.positions[path] = lastPos + int64(len(chunk))

	name := datasetName(path)

	// Pre-existing content is stamped with the file's mtime, not the
	// scan time: backlog read on attach is not fresh activity.
	stamp := s.now()
	if !seen && info.ModTime().Before(stamp) {
		stamp = info.ModTime()
	}
	if stamp.After(s.lastChange) {
		s.lastChange = stamp
	}

	if status, ok := ParseProgress(name, string(chunk), stamp); ok {
		s.statuses[name] = status
		return
	}

	// New bytes without a progress line still count as activity for the
	// dataset, but the counters stay as they were.
	if prev, ok := s.statuses[name]; ok {
		prev.LastUpdate = stamp
		s.statuses[name] = prev
	}
}

// LastChange returns the time of the most recent observed activity.
// The zero time means no activity has been observed yet.
func (s *Scanner) LastChange() time.Time {
	return s.lastChange
}

// sorted returns the statuses ordered by dataset name.
func (s *Scanner) sorted() []DatasetStatus {
	out := make([]DatasetStatus, 0, len(s.statuses))
	for _, status := range s.statuses {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// datasetName derives the dataset name from a log file path.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
