// Package redact strips credentials, provider keys, SQL values and personal
// data from error text before it is logged.
//
// Store errors may quote SQL with course titles and user IDs, connection
// failures may carry database or Redis URLs with passwords, and Gemini client
// errors may echo the caller's API key. Rules run in order, so broader rules
// never see text an earlier rule already replaced.
package redact

import "regexp"

// Placeholders substituted for redacted text.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedUUIDPlaceholder       = "[REDACTED_UUID]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
	RedactedSQLValuesPlaceholder  = "[SQL_VALUES_REDACTED]"
	RedactedSQLWherePlaceholder   = "[SQL_CONDITIONS_REDACTED]"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

var rules = []rule{
	// A panic report swallows everything after it.
	{regexp.MustCompile(`(?s)(?:panic: |goroutine \d+ \[).*`), RedactedStackPlaceholder},

	// userinfo in postgres and redis URLs; the host stays for diagnosis
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|rediss?|mysql)://[^@\s/]+@`),
		"${1}://" + RedactedCredentialPlaceholder + "@",
	},
	{regexp.MustCompile(`(?i)([?&](?:key|api_key|access_token|token)=)[^&\s"']+`), "${1}" + RedactedKeyPlaceholder},
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), RedactedJWTPlaceholder},
	{regexp.MustCompile(`(?i)\b(Bearer)\s+[A-Za-z0-9_\-.~+/=]+`), "${1} " + RedactedCredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd)(\s*[=:]\s*)['"]?[^'"&\s,)]+['"]?`),
		"${1}${2}" + RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|access[_-]?key)(\s*[=:]\s*)['"]?[A-Za-z0-9_\-.~+/]{8,}['"]?`),
		"${1}${2}" + RedactedKeyPlaceholder,
	},

	// SQL literals carry titles, prompts and user IDs. WHERE runs before
	// SET so an UPDATE collapses to its table name.
	{regexp.MustCompile(`(?is)\bVALUES\s*\(.*`), "VALUES " + RedactedSQLValuesPlaceholder},
	{regexp.MustCompile(`(?is)\bWHERE\b.*`), "WHERE " + RedactedSQLWherePlaceholder},
	{regexp.MustCompile(`(?is)\b(UPDATE\s+\w+\s+SET)\b.*`), "${1} " + RedactedSQLValuesPlaceholder},

	{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), RedactedEmailPlaceholder},
	{
		regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`),
		RedactedUUIDPlaceholder,
	},

	// absolute paths that start a token; URL paths are left alone
	{regexp.MustCompile(`(^|[\s'"(=])(?:/[\w.-]+){2,}`), "${1}" + RedactedPathPlaceholder},
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// Error redacts sensitive information from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
