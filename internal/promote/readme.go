package promote

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/noah-ing/Agent0/internal/types"
)

const (
	snapshotMarker = "### Latest Benchmark Snapshot"
	insertMarker   = "## Evaluation Harness (OpenCompass)"
)

// FormatSnapshotTable renders the README benchmark table from parsed
// scores, sorted by dataset name.
func FormatSnapshotTable(scores map[string]Score, runDate string) string {
	lines := []string{
		fmt.Sprintf("%s (%s)", snapshotMarker, runDate),
		"| Dataset | Config | Metric | Mode | Score |",
		"| --- | --- | --- | --- | --- |",
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := scores[name]
		lines = append(lines, fmt.Sprintf("| %s | `%s_gen_%s` | %s | `%s` | **%s** |",
			strings.ToUpper(name), name, info.Version, info.Metric, info.Mode, info.Score))
	}
	return strings.Join(lines, "\n")
}

// UpdateReadme splices the snapshot table into README content. An
// existing snapshot section is replaced in place; otherwise the table is
// inserted at the end of the evaluation harness section, or appended when
// no anchor exists.
func UpdateReadme(content, table string) string {
	if start := strings.Index(content, snapshotMarker); start != -1 {
		end := sectionEnd(content, start+len(snapshotMarker))
		return content[:start] + table + "\n" + content[end:]
	}

	if idx := strings.Index(content, insertMarker); idx != -1 {
		next := strings.Index(content[idx+len(insertMarker):], "\n## ")
		if next == -1 {
			return content + "\n" + table + "\n"
		}
		pos := idx + len(insertMarker) + next
		return content[:pos] + "\n" + table + "\n" + content[pos:]
	}

	return content + "\n" + table + "\n"
}

// sectionEnd finds where the snapshot section stops: the next "##"
// heading or another "###" heading, else end of content.
func sectionEnd(content string, from int) int {
	rest := content[from:]
	offset := 0
	for {
		idx := strings.Index(rest[offset:], "\n#")
		if idx == -1 {
			return len(content)
		}
		pos := offset + idx + 1
		line := rest[pos:]
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ") {
			return from + pos
		}
		offset = pos
	}
}

// RewriteReadme loads the README, splices in the snapshot table, and
// writes it back.
func RewriteReadme(path, table string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.WrapError(types.PROMOTE_README_FAILED, "failed to read README", err)
	}
	updated := UpdateReadme(string(data), table)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return types.WrapError(types.PROMOTE_README_FAILED, "failed to write README", err)
	}
	return nil
}
