// headers/redact/redact.go
package redact

// sensitiveHeaderKeys lists header names whose values carry credentials and
// must never reach the logs verbatim.
var sensitiveHeaderKeys = map[string]bool{
	"Authorization": true,
	"Access-Token":  true,
	"Refresh-Token": true,
	"Cookie":        true,
	"Set-Cookie":    true,
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key string, value string) string {
	if hideSensitiveData && sensitiveHeaderKeys[key] {
		return "REDACTED"
	}
	return value
}

// RedactToken redacts a bearer token value for logging, keeping a short prefix
// so related log lines can still be correlated.
func RedactToken(hideSensitiveData bool, token string) string {
	if !hideSensitiveData {
		return token
	}
	if len(token) <= 8 {
		return "REDACTED"
	}
	return token[:8] + "...REDACTED"
}
