// Package redact scrubs credentials and infrastructure details from error
// text before it reaches logs. Upstream generative services echo request
// fragments in their errors, so keys and bearer tokens are the main concern.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

func newRule(expr, placeholder string) rule {
	return rule{pattern: regexp.MustCompile(expr), placeholder: placeholder}
}

// rules run in order; credential rules come first so that later, broader
// rules never see a partially redacted secret.
var rules = []rule{
	// userinfo of a database URL
	newRule(`(?i)(postgres|postgresql|db|database|connection)://[^@]+@`, RedactedCredentialPlaceholder),
	newRule(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`, RedactedCredentialPlaceholder),

	// generative service keys: Google AI Studio, then Groq
	newRule(`AIza[0-9A-Za-z_\-]{30,}`, RedactedKeyPlaceholder),
	newRule(`gsk_[A-Za-z0-9]{20,}`, RedactedKeyPlaceholder),
	newRule(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`, RedactedKeyPlaceholder),

	newRule(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`, "[REDACTED_JWT]"),
	newRule(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{16,}=*`, RedactedCredentialPlaceholder),

	newRule(`(/[\w.-]+){2,}`, RedactedPathPlaceholder),
	newRule(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`, RedactedPathPlaceholder),
	newRule(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`, "[STACK_TRACE_REDACTED]"),
	newRule(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, "[REDACTED_EMAIL]"),
	newRule(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`, "[REDACTED_HOST]"),
	newRule(`(?i)(?:no such file|file not found|can't open|cannot open|file error)`, "[REDACTED_FILE_ERROR]"),
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error redacts err.Error(); a nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
