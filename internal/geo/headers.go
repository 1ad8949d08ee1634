package geo

import (
	"net/http"
	"strings"
)

// Unknown is reported when no source could determine a value.
const Unknown = "Unknown"

// ClientIP derives the visitor's IP from proxy headers, most specific
// provider first.
func ClientIP(h http.Header) string {
	if v := h.Get("CF-Connecting-IP"); v != "" {
		return strings.TrimSpace(v)
	}
	if v := h.Get("X-Forwarded-For"); v != "" {
		// The first entry is the original client; the rest are proxies.
		return strings.TrimSpace(strings.Split(v, ",")[0])
	}
	if v := h.Get("X-Real-IP"); v != "" {
		return strings.TrimSpace(v)
	}
	if v := h.Get("X-Client-IP"); v != "" {
		return strings.TrimSpace(v)
	}
	return Unknown
}

// CountryFromHeaders reads the country injected by an edge proxy, if any.
// Cloudflare reports "XX" for unknown, which counts as absent.
func CountryFromHeaders(h http.Header) string {
	if v := h.Get("CF-IPCountry"); v != "" && v != "XX" {
		return v
	}
	if v := h.Get("X-Country"); v != "" {
		return v
	}
	if v := h.Get("X-Geo-Country"); v != "" {
		return v
	}
	if v := h.Get("X-Vercel-IP-Country"); v != "" {
		return v
	}
	return Unknown
}

// CityFromHeaders reads the city injected by an edge proxy, if any.
func CityFromHeaders(h http.Header) string {
	if v := h.Get("CF-IPCity"); v != "" {
		return v
	}
	if v := h.Get("X-City"); v != "" {
		return v
	}
	if v := h.Get("X-Geo-City"); v != "" {
		return v
	}
	return Unknown
}
