// Package googlemaps provides a trip candidate provider backed by the Google
// Directions API in transit mode.
package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/provider/resilience"
	"github.com/onejourney/onejourney/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "googlemaps"

	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxRoutes caps how many alternatives are turned into candidates.
	MaxRoutes = 3

	directionsPath = "/maps/api/directions/json"
)

// Per-kilometer rate tables used to price a route by its dominant mode.
const (
	cabCostPerKm   = 12
	cabCarbonPerKm = 120

	metroWalkBaseCost    = 40
	metroWalkCostPerKm   = 2
	metroWalkCarbonPerKm = 15

	metroAutoBaseCost    = 60
	metroAutoCostPerKm   = 3
	metroAutoCarbonPerKm = 20

	busBaseCost    = 20
	busCostPerKm   = 2
	busCarbonPerKm = 25
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Directions client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to Google Maps).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Directions API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Google Directions client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		clientCfg.CircuitBreaker.OnStateChange = resilience.LogStateChange(cfg.Logger)
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Candidates requests transit directions between two free-text places and
// converts up to MaxRoutes alternatives into priced candidates.
func (c *Client) Candidates(ctx context.Context, source, destination string) ([]routing.Candidate, error) {
	q := url.Values{}
	q.Set("origin", source)
	q.Set("destination", destination)
	q.Set("alternatives", "true")
	q.Set("mode", "transit")
	q.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+directionsPath+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("source", source).
		Str("destination", destination).
		Msg("requesting directions from Google Maps")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		code := "REQUEST_FAILED"
		if errors.Is(err, resilience.ErrCircuitOpen) {
			code = "CIRCUIT_OPEN"
		}
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     code,
			Message:  "failed to reach directions provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp.StatusCode)
	}

	var dirResp directionsResponse
	if err := json.Unmarshal(respBody, &dirResp); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "could not decode directions response",
			Err:      routing.ErrInvalidResponse,
		}
	}

	if dirResp.Status != statusOK {
		return nil, handleStatus(dirResp.Status, dirResp.ErrorMessage)
	}
	if len(dirResp.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "directions provider returned no routes",
			Err:      routing.ErrNoRouteFound,
		}
	}

	candidates := toCandidates(dirResp.Routes)
	if len(candidates) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_LEGS",
			Message:  "directions provider returned routes without legs",
			Err:      routing.ErrInvalidResponse,
		}
	}

	c.logger.Debug().
		Int("route_count", len(candidates)).
		Msg("received directions from Google Maps")

	return candidates, nil
}

// handleHTTPError maps non-200 transport statuses to domain errors.
func handleHTTPError(statusCode int) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusCode >= 500:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "directions provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("directions provider returned status %d", statusCode),
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// handleStatus maps a Directions API status field to a domain error.
func handleStatus(status, message string) error {
	if message == "" {
		message = "directions request failed with status " + status
	}

	switch status {
	case statusZeroResults, statusNotFound:
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  message,
			Err:      routing.ErrNoRouteFound,
		}
	case statusOverQueryLimit:
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  message,
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusRequestDenied:
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "API access denied - check API key configuration",
			Err:      routing.ErrProviderUnavailable,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  message,
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// toCandidates converts up to MaxRoutes routes, skipping any without legs.
func toCandidates(routes []route) []routing.Candidate {
	if len(routes) > MaxRoutes {
		routes = routes[:MaxRoutes]
	}

	candidates := make([]routing.Candidate, 0, len(routes))
	for i := range routes {
		if len(routes[i].Legs) == 0 {
			continue
		}
		l := &routes[i].Legs[0]
		km, label := legDistance(&routes[i], l)

		mode, cost, carbon := priceLeg(l, km)

		candidates = append(candidates, routing.Candidate{
			ID:              len(candidates),
			Mode:            mode,
			DurationMinutes: routing.Round(l.Duration.Value / 60),
			Cost:            cost,
			CarbonGrams:     carbon,
			DistanceLabel:   label,
			DistanceKm:      km,
			Steps:           instructions(l.Steps),
		})
	}

	return candidates
}

// legDistance returns the leg distance in kilometers and its display label.
// Legs without a distance value are measured along the route polyline.
func legDistance(r *route, l *leg) (float64, string) {
	if l.Distance.Value > 0 || r.OverviewPolyline.Points == "" {
		return l.Distance.Value / 1000, l.Distance.Text
	}
	km := polylineKm(r.OverviewPolyline.Points)
	label := l.Distance.Text
	if label == "" {
		label = strconv.FormatFloat(km, 'f', 1, 64) + " km"
	}
	return km, label
}

// priceLeg picks the mode label and prices a leg from its step-level
// transit metadata. Legs with no transit step are priced as a cab ride.
func priceLeg(l *leg, km float64) (mode string, cost, carbon int) {
	mode = routing.ModeCab.Label()
	cost = routing.Round(km * cabCostPerKm)
	carbon = routing.Round(km * cabCarbonPerKm)

	if !hasTravelMode(l.Steps, travelModeTransit) {
		return mode, cost, carbon
	}

	hasMetro := hasVehicle(l.Steps, vehicleSubway, vehicleMetroRail)
	hasBus := hasVehicle(l.Steps, vehicleBus)

	switch {
	case hasMetro && hasTravelMode(l.Steps, travelModeWalking):
		return routing.ModeMetroWalk.Label(),
			routing.Round(metroWalkBaseCost + km*metroWalkCostPerKm),
			routing.Round(km * metroWalkCarbonPerKm)
	case hasMetro:
		return routing.ModeMetroAuto.Label(),
			routing.Round(metroAutoBaseCost + km*metroAutoCostPerKm),
			routing.Round(km * metroAutoCarbonPerKm)
	case hasBus:
		return routing.ModeBus.Label(),
			routing.Round(busBaseCost + km*busCostPerKm),
			routing.Round(km * busCarbonPerKm)
	}

	return mode, cost, carbon
}

func hasTravelMode(steps []step, mode string) bool {
	for i := range steps {
		if steps[i].TravelMode == mode {
			return true
		}
	}
	return false
}

func hasVehicle(steps []step, types ...string) bool {
	for i := range steps {
		td := steps[i].TransitDetails
		if td == nil {
			continue
		}
		for _, t := range types {
			if td.Line.Vehicle.Type == t {
				return true
			}
		}
	}
	return false
}

// instructions returns the first routing.MaxSteps non-empty instructions.
func instructions(steps []step) []string {
	out := make([]string, 0, routing.MaxSteps)
	for i := range steps {
		if len(out) == routing.MaxSteps {
			break
		}
		if steps[i].HTMLInstructions != "" {
			out = append(out, steps[i].HTMLInstructions)
		}
	}
	return out
}

var _ routing.Provider = (*Client)(nil)
