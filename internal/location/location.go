// Package location provides the current approximate coordinates used to
// fill in GPS tags.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bstardust/exif-editor/internal/logger"
	"github.com/bstardust/exif-editor/pkg/common"
)

// DefaultEndpoint is the IP geolocation service queried by default
const DefaultEndpoint = "https://ipinfo.io/json"

// Coordinates is a position in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Provider obtains the current approximate coordinates
type Provider interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// Static is a provider that always returns the same coordinates
type Static Coordinates

// Locate returns the fixed coordinates
func (s Static) Locate(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, common.NewLocationError("lookup canceled", err)
	}
	return Coordinates(s), nil
}

// IPProvider resolves coordinates from the caller's public IP address using
// an ipinfo-compatible endpoint that answers {"loc": "lat,lng"}
type IPProvider struct {
	endpoint string
	client   *http.Client
	retry    RetryConfig
}

// Option configures an IPProvider
type Option func(*IPProvider)

// WithHTTPClient replaces the HTTP client used for lookups
func WithHTTPClient(client *http.Client) Option {
	return func(p *IPProvider) {
		p.client = client
	}
}

// WithRetry replaces the retry configuration
func WithRetry(rc RetryConfig) Option {
	return func(p *IPProvider) {
		p.retry = rc
	}
}

// NewIPProvider creates a provider querying endpoint with the given timeout
// per request
func NewIPProvider(endpoint string, timeout time.Duration, opts ...Option) *IPProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	p := &IPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		retry:    DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ipinfoResponse struct {
	Loc string `json:"loc"`
}

// Locate queries the endpoint, retrying transient failures. Every failure
// is reported as a *common.LocationError.
func (p *IPProvider) Locate(ctx context.Context) (Coordinates, error) {
	var coords Coordinates

	err := RetryWithBackoff(ctx, "location lookup", func() error {
		c, err := p.fetch(ctx)
		if err != nil {
			return err
		}
		coords = c
		return nil
	}, p.retry)
	if err != nil {
		return Coordinates{}, common.NewLocationError("could not determine current location", err)
	}

	logger.Debug("Resolved location %s from %s", coords, p.endpoint)
	return coords, nil
}

func (p *IPProvider) fetch(ctx context.Context) (Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Coordinates{}, &StatusError{Code: resp.StatusCode}
	}

	var body ipinfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return Coordinates{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return ParseLoc(body.Loc)
}

// ParseLoc parses a "lat,lng" pair
func ParseLoc(loc string) (Coordinates, error) {
	latText, lngText, ok := strings.Cut(loc, ",")
	if !ok {
		return Coordinates{}, fmt.Errorf("invalid loc %q", loc)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", latText, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", lngText, err)
	}

	c := Coordinates{Latitude: lat, Longitude: lng}
	if err := Validate(c); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// Validate checks that c is finite and lies within the valid latitude and
// longitude ranges
func Validate(c Coordinates) error {
	for _, v := range []float64{c.Latitude, c.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("coordinates %s are not finite", c)
		}
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("coordinates %s out of range", c)
	}
	return nil
}
