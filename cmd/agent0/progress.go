package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/noah-ing/Agent0/internal/monitor"
)

var (
	doneColor    = color.New(color.FgGreen, color.Bold)
	activeColor  = color.New(color.FgYellow)
	stalledColor = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

// printSnapshot renders one monitor snapshot for headless use.
func printSnapshot(w io.Writer, snap monitor.Snapshot) {
	fmt.Fprintf(w, "work dir: %s\n", snap.WorkDir)
	fmt.Fprintf(w, "status:   %s    session: %s\n", snap.Status, formatElapsed(snap.SessionElapsed))

	if len(snap.Datasets) == 0 {
		mutedColor.Fprintln(w, "no inference logs yet")
		return
	}

	for _, d := range snap.Datasets {
		line := fmt.Sprintf("%-36s %d/%d (%.1f%%)  elapsed %s  eta %s  %s",
			d.Name, d.Completed, d.Total, d.Percent(),
			valueOr(d.Elapsed), valueOr(d.Remaining), valueOr(d.Rate))
		switch {
		case d.Stalled:
			stalledColor.Fprintf(w, "%s  STALLED (idle %s)\n", line, formatElapsed(d.IdleFor))
		case d.Finished:
			doneColor.Fprintf(w, "%s  done\n", line)
		default:
			activeColor.Fprintf(w, "%s  active\n", line)
		}
	}

	completed, total := snap.TotalProgress()
	if total > 0 {
		fmt.Fprintf(w, "overall: %d/%d (%.1f%%)\n", completed, total,
			float64(completed)/float64(total)*100)
	}
}

func valueOr(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

func formatElapsed(d time.Duration) string {
	return d.Round(time.Second).String()
}
