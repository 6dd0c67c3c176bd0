// Package promote archives finished OpenCompass results: it copies the
// run's summary markdown into the reports tree and refreshes the README
// benchmark snapshot.
package promote

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/noah-ing/Agent0/internal/types"
)

// Score is one row of an OpenCompass summary table.
type Score struct {
	Version string
	Metric  string
	Mode    string
	Score   string
}

// FindSummary locates the summary markdown inside a work dir. OpenCompass
// writes exactly one per run; when several exist the lexically first is
// taken for determinism.
func FindSummary(workDir string) (string, error) {
	pattern := filepath.Join(workDir, "summary", "*.md")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", types.NewErrorf(types.PROMOTE_SUMMARY_MISSING,
			"no summary markdown found in %s", filepath.Join(workDir, "summary"))
	}
	sort.Strings(matches)
	return matches[0], nil
}

// ParseScores extracts {dataset -> score row} from an OpenCompass summary
// markdown table. Header and separator rows are skipped; rows with fewer
// than five cells are ignored.
func ParseScores(content string) map[string]Score {
	scores := make(map[string]Score)
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if strings.Contains(strings.ToLower(line), "dataset") || strings.Contains(line, "---") {
			continue
		}

		cells := strings.Split(line, "|")
		if len(cells) < 7 {
			continue
		}
		parts := make([]string, 0, len(cells)-2)
		for _, cell := range cells[1 : len(cells)-1] {
			parts = append(parts, strings.TrimSpace(cell))
		}
		if len(parts) < 5 {
			continue
		}
		scores[parts[0]] = Score{
			Version: parts[1],
			Metric:  parts[2],
			Mode:    parts[3],
			Score:   parts[4],
		}
	}
	return scores
}

// copyFile copies src to dst byte for byte.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return types.WrapError(types.PROMOTE_COPY_FAILED, "failed to read summary", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return types.WrapError(types.PROMOTE_COPY_FAILED, "failed to create reports directory", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return types.WrapError(types.PROMOTE_COPY_FAILED, "failed to write archived summary", err)
	}
	return nil
}
