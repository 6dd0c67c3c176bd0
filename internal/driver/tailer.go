package driver

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/noah-ing/Agent0/internal/runstate"
)

// DefaultTailInterval is the cadence of the in-process progress tailer.
const DefaultTailInterval = 15 * time.Second

var plainProgressPattern = regexp.MustCompile(`(\d+)/(\d+)`)

// Tailer follows logs/infer/**/*.out under an experiment folder and
// emits deduplicated one-line progress summaries. It is the lightweight
// sibling of the monitor dashboard, meant for interleaving with the
// subprocess's own output.
type Tailer struct {
	expFolder   string
	interval    time.Duration
	emit        func(dataset, summary string)
	positions   map[string]int64
	lastSummary map[string]string
	notified    bool
	notify      func(logRoot string)
}

// NewTailer creates a tailer over an experiment folder. emit receives
// the dataset name and its latest summary line; notify fires once when
// the log root first appears and may be nil.
func NewTailer(expFolder string, interval time.Duration, emit func(dataset, summary string), notify func(logRoot string)) *Tailer {
	if interval <= 0 {
		interval = DefaultTailInterval
	}
	return &Tailer{
		expFolder:   expFolder,
		interval:    interval,
		emit:        emit,
		positions:   make(map[string]int64),
		lastSummary: make(map[string]string),
		notify:      notify,
	}
}

// Run polls until the context is cancelled.
func (t *Tailer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		t.Poll()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll performs one pass over the inference logs.
func (t *Tailer) Poll() {
	logRoot := filepath.Join(t.expFolder, "logs", "infer")
	if _, err := os.Stat(logRoot); err != nil {
		return
	}
	if !t.notified {
		t.notified = true
		if t.notify != nil {
			t.notify(logRoot)
		}
	}

	var files []string
	filepath.WalkDir(logRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".out") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)

	for _, path := range files {
		t.pollFile(path)
	}
}

// pollFile reads the new bytes of one log file and emits a summary when
// a fresh interesting line appeared. On the first sighting of a file the
// offset is primed to its end so old output is not replayed.
func (t *Tailer) pollFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		delete(t.positions, path)
		delete(t.lastSummary, path)
		return
	}
	defer f.Close()

	pos, seen := t.positions[path]
	if !seen {
		end, err := f.Seek(0, io.SeekEnd)
		if err == nil {
			t.positions[path] = end
		}
		return
	}

	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		return
	}
	chunk, err := io.ReadAll(f)
	if err != nil || len(chunk) == 0 {
		return
	}
	t.positions[path] = pos + int64(len(chunk))

	summary := summarizeLines(strings.Split(string(chunk), "\n"))
	if summary == "" || !shouldEmit(summary) {
		return
	}
	if summary == t.lastSummary[path] {
		return
	}
	t.lastSummary[path] = summary

	dataset := strings.TrimSuffix(filepath.Base(path), ".out")
	t.emit(dataset, summary)
}

// summarizeLines picks the last interesting line of a chunk: a tqdm bar,
// an inferencer banner, or a throughput line.
func summarizeLines(lines []string) string {
	var last string
	for _, raw := range lines {
		stripped := strings.TrimSpace(runstate.StripANSI(raw))
		if stripped == "" {
			continue
		}
		if strings.Contains(stripped, "%|") ||
			strings.Contains(stripped, "Inferencing") ||
			strings.Contains(stripped, "examples/s") {
			last = stripped
		}
	}
	return last
}

// shouldEmit suppresses the 0/1 placeholder tick tqdm prints before the
// real total is known.
func shouldEmit(summary string) bool {
	match := plainProgressPattern.FindStringSubmatch(summary)
	if match != nil && match[1] == "0" && match[2] == "1" {
		return false
	}
	return true
}
