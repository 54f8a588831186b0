package logger

import (
	"net/url"
	"strings"
)

// MaskDSN hides the password in a connection URL (e.g. "postgres://app:*****@db/app").
// Key/value DSNs get their password= value masked instead.
func MaskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}

	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "[invalid-dsn]"
		}
		if u.User != nil {
			if _, ok := u.User.Password(); ok {
				// Rebuild by hand; url.UserPassword would escape the asterisks.
				redacted := *u
				redacted.User = nil
				rest := strings.TrimPrefix(redacted.String(), u.Scheme+"://")
				return u.Scheme + "://" + u.User.Username() + ":*****@" + rest
			}
		}
		return u.String()
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=*****"
		}
	}
	return strings.Join(fields, " ")
}

// SanitizeQueryString checks if query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := map[string]bool{
		"password": true,
		"token":    true,
		"secret":   true,
		"api_key":  true,
		"apikey":   true,
		"dsn":      true,
		"auth":     true,
	}

	query := strings.ToLower(rawQuery)
	for param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
