// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
	"strings"
)

// Default client identity sent to open-data portals.
const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 procfeed/1.0"
	DefaultAccept    = "application/json, text/plain, */*"
)

// BuildHeaders creates HTTP headers with defaults. Custom values replace defaults.
func BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Set("User-Agent", DefaultUserAgent)
	headers.Set("Accept", DefaultAccept)
	headers.Set("Accept-Language", "es-PE,es;q=0.9,en;q=0.8")

	for key, value := range customHeaders {
		if value == "" {
			continue
		}

		headers.Set(key, value)
	}

	return headers
}

// OriginOf returns "scheme://host/" for rawURL, or "" when it cannot be parsed.
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host + "/"
}

// HostAllowed reports whether the host of rawURL contains one of the allowed domains.
// Matching is case-insensitive. An empty allow-list allows nothing.
func HostAllowed(rawURL string, allowed []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, domain := range allowed {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" && strings.Contains(host, domain) {
			return true
		}
	}

	return false
}

// IsValidURL checks that rawURL is an absolute http(s) URL with a host.
func IsValidURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
