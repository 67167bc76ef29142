package validate

import (
	"strings"

	"github.com/schemapilot/schemapilot/internal/model"
)

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP", "WITH"}

func validateSQL(code string) model.ValidationResult {
	var r report
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		r.errorf("generated SQL is empty")
		return r.result()
	}
	upper := strings.ToUpper(trimmed)

	hasKeyword := false
	for _, kw := range sqlKeywords {
		if strings.Contains(upper, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		r.errorf("output does not look like SQL: no SQL keyword found")
	}

	if depth := parenBalance(trimmed); depth != 0 {
		r.errorf("unbalanced parentheses")
	}
	if strings.Count(trimmed, "'")%2 != 0 {
		r.errorf("odd number of single quotes, possible unterminated string")
	}

	if strings.Contains(upper, "SELECT") && !strings.Contains(upper, "FROM") && !isLiteralSelect(upper) {
		r.errorf("SELECT statement missing FROM clause")
	}

	for _, marker := range []string{"${", "`", "$("} {
		if strings.Contains(trimmed, marker) {
			r.suggestf("contains template-literal-like syntax %q, verify it is intended SQL", marker)
			break
		}
	}
	return r.result()
}

func parenBalance(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

// isLiteralSelect accepts the degenerate "SELECT <literal>" form that
// legitimately has no FROM clause.
func isLiteralSelect(upper string) bool {
	rest := strings.TrimSpace(strings.TrimPrefix(upper, "SELECT"))
	rest = strings.TrimSuffix(rest, ";")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return false
	}
	return len(strings.Fields(rest)) == 1
}
