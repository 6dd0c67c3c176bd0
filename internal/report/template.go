// Package report renders iteration reports by fusing telemetry rollups
// with run metadata through a {{TOKEN}} markdown template.
package report

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/noah-ing/Agent0/internal/types"
)

// tokenPattern matches unresolved {{TOKEN}} placeholders.
var tokenPattern = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)

// LoadTemplate reads a report template from disk.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", types.NewErrorf(types.REPORT_TEMPLATE_MISSING, "template %s not found", path)
		}
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), nil
}

// Render substitutes every placeholder into the template.
func Render(template string, replacements map[string]string) string {
	rendered := template
	for token, value := range replacements {
		rendered = strings.ReplaceAll(rendered, "{{"+token+"}}", value)
	}
	return rendered
}

// UnresolvedTokens returns the sorted, deduplicated placeholder names
// still present in rendered content.
func UnresolvedTokens(content string) []string {
	matches := tokenPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var tokens []string
	for _, match := range matches {
		if !seen[match[1]] {
			seen[match[1]] = true
			tokens = append(tokens, match[1])
		}
	}
	sort.Strings(tokens)
	return tokens
}

// Finalize verifies a rendered report carries no unresolved placeholders.
func Finalize(content string) error {
	if tokens := UnresolvedTokens(content); len(tokens) > 0 {
		return types.NewErrorf(types.REPORT_TOKENS_UNRESOLVED,
			"report contains unresolved tokens: %s", strings.Join(tokens, ", "))
	}
	return nil
}
