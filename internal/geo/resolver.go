package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Location is a resolved visitor location.
type Location struct {
	Country string
	City    string
}

var unknownLocation = Location{Country: Unknown, City: Unknown}

// Resolver looks up a location for an IP address. Implementations are
// best-effort: they degrade to Unknown rather than failing a request.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (Location, error)
}

// Compile-time interface checks
var (
	_ Resolver = (*HTTPResolver)(nil)
	_ Resolver = (*NoopResolver)(nil)
)

// NoopResolver always reports an unknown location. It is the default so
// nothing in the ingestion path depends on external network calls.
type NoopResolver struct{}

func (NoopResolver) Resolve(context.Context, string) (Location, error) {
	return unknownLocation, nil
}

// HTTPResolver resolves locations through an ip-api.com compatible JSON
// endpoint.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPResolver creates a resolver against baseURL (e.g. "http://ip-api.com").
func NewHTTPResolver(baseURL string, timeout time.Duration, log *zap.Logger) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type lookupResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// Resolve looks up ip. Private, loopback, and unparseable addresses are
// skipped without a network call.
func (r *HTTPResolver) Resolve(ctx context.Context, ip string) (Location, error) {
	if !IsResolvable(ip) {
		return unknownLocation, nil
	}

	endpoint := fmt.Sprintf("%s/json/%s?fields=status,country,city", r.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unknownLocation, fmt.Errorf("failed to build geo lookup request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return unknownLocation, fmt.Errorf("geo lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unknownLocation, fmt.Errorf("geo lookup returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unknownLocation, fmt.Errorf("failed to decode geo lookup response: %w", err)
	}

	if body.Status != "success" {
		return unknownLocation, nil
	}

	loc := unknownLocation
	if body.Country != "" {
		loc.Country = body.Country
	}
	if body.City != "" {
		loc.City = body.City
	}
	return loc, nil
}

// IsResolvable reports whether ip is worth sending to the lookup service.
func IsResolvable(ip string) bool {
	if ip == "" || ip == Unknown {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified()
}
