package processor

import (
	"net/url"
	"strings"
)

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return invalidURL("empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return invalidURL(err.Error())
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return invalidURL("scheme must be http or https")
	}
	if u.Host == "" || u.Hostname() == "" {
		return invalidURL("missing host")
	}
	return nil
}
