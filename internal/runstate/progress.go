// Package runstate models the on-disk state of an evaluation run.
//
// A run is a timestamped work directory owned by the external evaluation
// platform. The platform is the single writer; everything in this package
// is strictly read-only over the directory.
package runstate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// progressPattern matches tqdm-style progress lines emitted into the
// per-dataset inference logs: "N/M [elapsed<remaining, rate]".
var progressPattern = regexp.MustCompile(`(\d+)/(\d+)\s*\[([^\]]+)<([^\]]+),\s*([^\]]+)\]`)

// ansiPattern matches ANSI escape sequences so carriage-return progress
// bars can be parsed from raw log bytes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// DatasetStatus is the parsed progress of a single dataset within a run.
type DatasetStatus struct {
	// Name is the dataset log stem (e.g. "gsm8k_gen_1d7fe4").
	Name string `json:"name"`

	// Completed and Total are the example counters from the latest
	// progress line.
	Completed int `json:"completed"`
	Total     int `json:"total"`

	// Elapsed, Remaining and Rate are carried verbatim from the log;
	// the platform already formats them for display.
	Elapsed   string `json:"elapsed"`
	Remaining string `json:"remaining"`
	Rate      string `json:"rate"`

	// LastUpdate is when the harness last observed new progress.
	LastUpdate time.Time `json:"last_update"`

	// Finished is true once Completed >= Total with a non-zero Total.
	Finished bool `json:"finished"`
}

// Percent returns the completion percentage, 0 when Total is unknown.
func (s DatasetStatus) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// IdleFor returns how long the dataset has gone without observed progress.
func (s DatasetStatus) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastUpdate)
}

// ParseProgress scans chunk for progress lines and returns the status
// parsed from the most recent one. The bool result is false when the
// chunk contains no progress line.
func ParseProgress(name string, chunk string, now time.Time) (DatasetStatus, bool) {
	lines := strings.Split(chunk, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := StripANSI(lines[i])
		match := progressPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		completed, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		total, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}

		return DatasetStatus{
			Name:       name,
			Completed:  completed,
			Total:      total,
			Elapsed:    strings.TrimSpace(match[3]),
			Remaining:  strings.TrimSpace(match[4]),
			Rate:       strings.TrimSpace(match[5]),
			LastUpdate: now,
			Finished:   total > 0 && completed >= total,
		}, true
	}
	return DatasetStatus{}, false
}

// StripANSI removes terminal escape sequences from a log line.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
