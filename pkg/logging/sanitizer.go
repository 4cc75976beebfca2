package logging

import "regexp"

const (
	// MaxQueryLogLength is the maximum length of a query to log.
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

// Matches password=xxx, pwd=xxx, pass=xxx until the next delimiter. Generated
// queries should never carry credentials, but the model output is untrusted.
var passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

// SanitizeQuery truncates and sanitizes a SQL query for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := query
	if len(sanitized) > MaxQueryLogLength {
		sanitized = sanitized[:MaxQueryLogLength] + "..."
	}

	return passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
