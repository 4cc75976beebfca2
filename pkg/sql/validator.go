// Package sql provides validation for LLM-generated SQL.
package sql

import (
	"fmt"
	"strings"
)

// forbiddenKeywords are the mutating operations that must never appear in a
// generated query. Each is matched as a case-insensitive substring followed
// by a word boundary. The scan is deliberately substring-based: it can
// over-reject a benign query that carries one of these words inside a string
// literal or identifier. That is a documented limitation, traded for a check
// with no parser dependency.
var forbiddenKeywords = []string{
	"insert",
	"update",
	"delete",
	"drop",
	"alter",
	"truncate",
	"create",
}

// InvalidQueryError reports that generated text is not a safe SELECT
// statement. SQL carries the offending (normalized) text.
type InvalidQueryError struct {
	Reason string
	SQL    string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Reason, e.SQL)
}

// Sanitize normalizes raw LLM output and enforces the read-only policy.
//
// Normalization: strip markdown code fences, trim whitespace, strip one
// trailing semicolon. Policy: the text must start with SELECT
// (case-insensitive), must be a single statement, must not contain any
// forbidden keyword, and must not carry injection patterns inside its
// string literals.
//
// Sanitize is pure and idempotent: re-sanitizing its own output returns the
// same string.
func Sanitize(raw string) (string, error) {
	normalized := stripTrailingSemicolon(stripMarkdownFences(raw))

	if !strings.HasPrefix(strings.ToLower(strings.TrimLeft(normalized, " \t\n\r")), "select") {
		return "", &InvalidQueryError{Reason: "not a SELECT statement", SQL: normalized}
	}

	if hasSemicolonOutsideStrings(normalized) {
		return "", &InvalidQueryError{Reason: "multiple statements not allowed", SQL: normalized}
	}

	lower := strings.ToLower(normalized)
	for _, kw := range forbiddenKeywords {
		if containsKeyword(lower, kw) {
			return "", &InvalidQueryError{
				Reason: fmt.Sprintf("contains forbidden operation %q", strings.ToUpper(kw)),
				SQL:    normalized,
			}
		}
	}

	if err := checkLiteralsForInjection(normalized); err != nil {
		return "", err
	}

	return normalized, nil
}

// containsKeyword reports whether lower contains kw followed by a word
// boundary (end of text, whitespace, or punctuation that can terminate an
// identifier).
func containsKeyword(lower, kw string) bool {
	for start := 0; ; {
		idx := strings.Index(lower[start:], kw)
		if idx < 0 {
			return false
		}
		end := start + idx + len(kw)
		if end >= len(lower) || isWordBoundary(lower[end]) {
			return true
		}
		start = start + idx + 1
	}
}

func isWordBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', ';', ',':
		return true
	}
	return false
}

// stripMarkdownFences removes ```sql / ``` markers anywhere in the text and
// trims the surrounding whitespace.
func stripMarkdownFences(s string) string {
	s = removeAllFold(s, "```sql")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// removeAllFold removes every case-insensitive occurrence of sub from s.
func removeAllFold(s, sub string) string {
	lower := strings.ToLower(s)
	subLower := strings.ToLower(sub)
	var b strings.Builder
	for {
		idx := strings.Index(lower, subLower)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		s = s[idx+len(sub):]
		lower = lower[idx+len(sub):]
	}
}

// stripTrailingSemicolon removes one trailing semicolon and the whitespace
// around it.
func stripTrailingSemicolon(s string) string {
	s = strings.TrimRight(s, " \t\n\r")
	if strings.HasSuffix(s, ";") {
		s = strings.TrimRight(strings.TrimSuffix(s, ";"), " \t\n\r")
	}
	return s
}

// hasSemicolonOutsideStrings reports whether the SQL contains a semicolon
// outside of string literals. The trailing semicolon has already been
// stripped, so any remaining one means a second statement.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prev := rune(0)

	for _, ch := range sqlQuery {
		switch state {
		case stateNormal:
			switch ch {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handles both backslash escape (\') and SQL doubled quote ('').
			// A doubled quote exits and immediately re-enters on the next
			// quote, which keeps the scan inside the string.
			if ch == '\'' && prev != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if ch == '"' && prev != '\\' {
				state = stateNormal
			}
		}
		prev = ch
	}

	return false
}
