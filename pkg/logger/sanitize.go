package logger

import "strings"

// SanitizedUsername masks a username for logging: first character kept,
// the rest starred
func SanitizedUsername(username string) string {
	if username == "" {
		return "[empty]"
	}
	if len(username) == 1 {
		return "*"
	}
	return string(username[0]) + strings.Repeat("*", len(username)-1)
}

// SanitizeQueryString reports whether a query string contains sensitive
// parameters and should be redacted wholesale from logs
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"api_key",
		"apikey",
		"fingerprint",
		"auth",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
