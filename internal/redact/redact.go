// Package redact provides utilities for scrubbing sensitive information
// from strings before they are logged or returned in error responses.
// Errors from the LLM backend routinely echo request details, so this
// keeps API keys, bearer tokens, and endpoint hosts out of logs and
// client-facing messages.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedKeyPlaceholder  = "[REDACTED_KEY]"
	RedactedHostPlaceholder = "[REDACTED_HOST]"
	RedactedPathPlaceholder = "[REDACTED_PATH]"
)

// Precompiled regex patterns
var (
	// API keys and tokens appearing as key=value or header fragments
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Google-style API keys (AIza...) and bearer tokens
	googleKeyRegex = regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`)
	bearerRegex    = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`)

	// URLs carrying credentials, and bare host:port endpoints
	credURLRegex  = regexp.MustCompile(`(?i)[a-z][a-z0-9+.-]*://[^@\s]+@`)
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)

	// Local file paths leaked from config or template errors
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	patterns = []*regexp.Regexp{
		apiKeyRegex, googleKeyRegex, bearerRegex,
		credURLRegex, hostPortRegex, unixPathRegex,
	}

	placeholders = map[*regexp.Regexp]string{
		apiKeyRegex:    RedactedKeyPlaceholder,
		googleKeyRegex: RedactedKeyPlaceholder,
		bearerRegex:    RedactedKeyPlaceholder,
		credURLRegex:   RedactedHostPlaceholder,
		hostPortRegex:  RedactedHostPlaceholder,
		unixPathRegex:  RedactedPathPlaceholder,
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		result = pattern.ReplaceAllString(result, placeholders[pattern])
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
