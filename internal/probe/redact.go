package probe

import (
	"net/url"
	"strings"
)

const (
	redactHead = 20
	redactTail = 10

	// RedactedMask replaces credentials too short to show a head and a
	// tail without revealing all of it.
	RedactedMask = "[redacted]"

	// passwordMask matches what url.URL.Redacted writes for userinfo.
	passwordMask = "xxxxx"
)

// Redact returns a display form of a secret: its first 20 and last 10
// characters around "...". Anything of 30 characters or fewer is masked
// entirely.
func Redact(secret string) string {
	r := []rune(secret)
	if len(r) <= redactHead+redactTail {
		return RedactedMask
	}
	return string(r[:redactHead]) + "..." + string(r[len(r)-redactTail:])
}

// DisplayEndpoint returns endpoint with any embedded password masked, both
// in the userinfo and as a password query parameter. Endpoints that do not
// parse as URLs are masked entirely when they mention a password.
func DisplayEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" {
		if strings.Contains(strings.ToLower(endpoint), "password") {
			return RedactedMask
		}
		return endpoint
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", passwordMask)
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
