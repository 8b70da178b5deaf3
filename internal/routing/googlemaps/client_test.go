package googlemaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/provider/resilience"
	"github.com/onejourney/onejourney/internal/routing"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})
}

func fixtureServer(t *testing.T, path string, status int) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Candidates_Success(t *testing.T) {
	respBody, err := os.ReadFile("testdata/directions_response.json")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != directionsPath {
			t.Errorf("expected path %s, got %s", directionsPath, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("origin") != "Guindy, Chennai" {
			t.Errorf("expected origin 'Guindy, Chennai', got '%s'", q.Get("origin"))
		}
		if q.Get("destination") != "T. Nagar" {
			t.Errorf("expected destination 'T. Nagar', got '%s'", q.Get("destination"))
		}
		if q.Get("mode") != "transit" {
			t.Errorf("expected mode 'transit', got '%s'", q.Get("mode"))
		}
		if q.Get("alternatives") != "true" {
			t.Errorf("expected alternatives 'true', got '%s'", q.Get("alternatives"))
		}
		if q.Get("key") != "mock123" {
			t.Errorf("expected key 'mock123', got '%s'", q.Get("key"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respBody)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	candidates, err := client.Candidates(context.Background(), "Guindy, Chennai", "T. Nagar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != MaxRoutes {
		t.Fatalf("expected %d candidates, got %d", MaxRoutes, len(candidates))
	}

	tests := []struct {
		mode     string
		duration int
		cost     int
		carbon   int
		distance string
	}{
		{"🚇 Metro + Walk", 45, 65, 185, "12.3 km"},
		{"🚌 Bus", 50, 50, 375, "15.0 km"},
		{"🚕 Cab", 25, 120, 1200, "10.0 km"},
	}

	for i, tt := range tests {
		c := candidates[i]
		if c.ID != i {
			t.Errorf("candidate %d: expected id %d, got %d", i, i, c.ID)
		}
		if c.Mode != tt.mode {
			t.Errorf("candidate %d: expected mode %q, got %q", i, tt.mode, c.Mode)
		}
		if c.DurationMinutes != tt.duration {
			t.Errorf("candidate %d: expected duration %d, got %d", i, tt.duration, c.DurationMinutes)
		}
		if c.Cost != tt.cost {
			t.Errorf("candidate %d: expected cost %d, got %d", i, tt.cost, c.Cost)
		}
		if c.CarbonGrams != tt.carbon {
			t.Errorf("candidate %d: expected carbon %d, got %d", i, tt.carbon, c.CarbonGrams)
		}
		if c.DistanceLabel != tt.distance {
			t.Errorf("candidate %d: expected distance %q, got %q", i, tt.distance, c.DistanceLabel)
		}
	}

	first := candidates[0]
	if first.DistanceKm != 12.3 {
		t.Errorf("expected distance km 12.3, got %f", first.DistanceKm)
	}
	wantSteps := []string{"Walk to Guindy Metro", "Metro towards Chennai International Airport", "Walk to T. Nagar"}
	if len(first.Steps) != len(wantSteps) {
		t.Fatalf("expected %d steps, got %d: %v", len(wantSteps), len(first.Steps), first.Steps)
	}
	for i := range wantSteps {
		if first.Steps[i] != wantSteps[i] {
			t.Errorf("step %d: expected %q, got %q", i, wantSteps[i], first.Steps[i])
		}
	}
}

func TestClient_Candidates_MetroWithoutWalking(t *testing.T) {
	l := &leg{
		Steps: []step{
			{
				TravelMode:     travelModeTransit,
				TransitDetails: &transitDetails{Line: transitLine{Vehicle: vehicle{Type: vehicleMetroRail}}},
			},
		},
	}

	mode, cost, carbon := priceLeg(l, 10)
	if mode != routing.ModeMetroAuto.Label() {
		t.Errorf("expected mode %q, got %q", routing.ModeMetroAuto.Label(), mode)
	}
	if cost != 90 {
		t.Errorf("expected cost 90, got %d", cost)
	}
	if carbon != 200 {
		t.Errorf("expected carbon 200, got %d", carbon)
	}
}

func TestClient_Candidates_ZeroResults(t *testing.T) {
	server := fixtureServer(t, "testdata/zero_results.json", http.StatusOK)
	client := newTestClient(t, server)

	_, err := client.Candidates(context.Background(), "Atlantis", "Lemuria")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, routing.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got %v", err)
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatal("expected routing.Error type")
	}
	if routingErr.Code != statusZeroResults {
		t.Errorf("expected code %s, got %s", statusZeroResults, routingErr.Code)
	}
}

func TestClient_Candidates_RequestDenied(t *testing.T) {
	server := fixtureServer(t, "testdata/request_denied.json", http.StatusOK)
	client := newTestClient(t, server)

	_, err := client.Candidates(context.Background(), "Chennai", "Bangalore")
	if !errors.Is(err, routing.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestClient_Candidates_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.Candidates(context.Background(), "Chennai", "Bangalore")
	if !errors.Is(err, routing.ErrRateLimitExceeded) {
		t.Errorf("expected ErrRateLimitExceeded, got %v", err)
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatal("expected routing.Error type")
	}
	if !routingErr.IsRetryable() {
		t.Error("expected rate limit error to be retryable")
	}
}

func TestClient_Candidates_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.Candidates(context.Background(), "Chennai", "Bangalore")
	if !errors.Is(err, routing.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestClient_Candidates_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "OK", "routes": [`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.Candidates(context.Background(), "Chennai", "Bangalore")
	if !errors.Is(err, routing.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestClient_Candidates_NetworkError(t *testing.T) {
	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    "http://localhost:1",
		HTTPClient: &mockFailingClient{err: resilience.ErrCircuitOpen},
		Logger:     zerolog.Nop(),
	})

	_, err := client.Candidates(context.Background(), "Chennai", "Bangalore")
	if !errors.Is(err, routing.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}

	var routingErr *routing.Error
	if errors.As(err, &routingErr) && routingErr.Code != "CIRCUIT_OPEN" {
		t.Errorf("expected code CIRCUIT_OPEN, got %s", routingErr.Code)
	}
}

func TestClient_Name(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "mock123"})
	if client.Name() != ProviderName {
		t.Errorf("expected name %s, got %s", ProviderName, client.Name())
	}
}

func TestClient_RegistersWithRegistry(t *testing.T) {
	registry := resilience.NewRegistry()
	_ = NewClient(ClientConfig{APIKey: "mock123", Registry: registry})

	if registry.Health(ProviderName) == nil {
		t.Errorf("expected %s to be registered", ProviderName)
	}
}

func TestInstructions_SkipsEmptyAndTruncates(t *testing.T) {
	steps := []step{
		{HTMLInstructions: ""},
		{HTMLInstructions: "a"},
		{HTMLInstructions: "b"},
		{HTMLInstructions: ""},
		{HTMLInstructions: "c"},
		{HTMLInstructions: "d"},
	}

	got := instructions(steps)
	if len(got) != routing.MaxSteps {
		t.Fatalf("expected %d instructions, got %d", routing.MaxSteps, len(got))
	}
	if got[0] != "a" || got[2] != "c" {
		t.Errorf("unexpected instructions: %v", got)
	}
}

// mockHTTPClient wraps http.Client to implement HTTPDoer interface.
type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}

type mockFailingClient struct {
	err error
}

func (m *mockFailingClient) Do(_ *http.Request) (*http.Response, error) {
	return nil, m.err
}
