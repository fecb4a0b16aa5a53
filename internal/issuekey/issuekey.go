// Package issuekey extracts Jira issue keys from free-text time entry
// descriptions.
package issuekey

import (
	"regexp"
	"strings"
)

// keyPattern matches an issue key at the start of a description: one or
// more letters, one or more alphanumerics, a hyphen, one or more digits
// (e.g. "PROJ-123", "AB12-7"). Matching is case-insensitive.
var keyPattern = regexp.MustCompile(`(?i)^[a-z]+[a-z0-9]+-[0-9]+`)

// Extract returns the canonical (upper-cased) issue key at the start of
// the given description, or "" if the description does not begin with
// one. Leading and trailing whitespace is ignored.
func Extract(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return ""
	}
	match := keyPattern.FindString(trimmed)
	if match == "" {
		return ""
	}
	return strings.ToUpper(match)
}
