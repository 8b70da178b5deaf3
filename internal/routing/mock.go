package routing

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

// MockProviderName identifies the synthetic candidate generator.
const MockProviderName = "mock"

// ModeSpec describes a transport mode and its baseline trip figures.
type ModeSpec struct {
	Icon        string
	Name        string
	BaseMinutes float64
	BaseCost    float64
	BaseCarbon  float64
}

// Label returns the display label, e.g. "🚕 Cab".
func (m ModeSpec) Label() string {
	return m.Icon + " " + m.Name
}

// Transport modes known to the service.
var (
	ModeCab       = ModeSpec{Icon: "🚕", Name: "Cab", BaseMinutes: 25, BaseCost: 180, BaseCarbon: 45}
	ModeMetroAuto = ModeSpec{Icon: "🚇", Name: "Metro + Auto", BaseMinutes: 35, BaseCost: 65, BaseCarbon: 15}
	ModeMetroWalk = ModeSpec{Icon: "🚇", Name: "Metro + Walk"}
	ModeBus       = ModeSpec{Icon: "🚌", Name: "Bus", BaseMinutes: 50, BaseCost: 30, BaseCarbon: 20}
	ModeBikeTaxi  = ModeSpec{Icon: "🏍️", Name: "Bike Taxi", BaseMinutes: 28, BaseCost: 120, BaseCarbon: 30}
	ModeWalkMetro = ModeSpec{Icon: "🚶", Name: "Walk + Metro", BaseMinutes: 45, BaseCost: 40, BaseCarbon: 8}
)

// mockModeTable is the fixed order of synthetic candidates.
var mockModeTable = []ModeSpec{ModeCab, ModeMetroAuto, ModeBus, ModeBikeTaxi, ModeWalkMetro}

const (
	minVariance    = 0.8
	varianceSpread = 0.4
)

// RandSource yields uniform values in [0, 1).
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// MockProvider synthesizes plausible candidates when no real directions are available.
// It never fails.
type MockProvider struct {
	mu  sync.Mutex
	rnd RandSource
}

// NewMockProvider creates a mock provider. A nil source uses the global generator.
func NewMockProvider(rnd RandSource) *MockProvider {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &MockProvider{rnd: rnd}
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return MockProviderName
}

// Candidates returns one candidate per entry of the mode table, with each
// baseline scaled by a random factor in [0.8, 1.2).
func (p *MockProvider) Candidates(_ context.Context, source, destination string) ([]Candidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make([]Candidate, 0, len(mockModeTable))
	for i, m := range mockModeTable {
		variance := minVariance + p.rnd.Float64()*varianceSpread
		km := 8 + p.rnd.Float64()*10

		candidates = append(candidates, Candidate{
			ID:              i,
			Mode:            m.Label(),
			DurationMinutes: Round(m.BaseMinutes * variance),
			Cost:            Round(m.BaseCost * variance),
			CarbonGrams:     Round(m.BaseCarbon * variance),
			DistanceLabel:   fmt.Sprintf("%.1f km", km),
			DistanceKm:      km,
			Steps: []string{
				"Board " + m.Icon + " from " + source,
				"Travel via optimal route",
				"Arrive at " + destination,
			},
		})
	}

	return candidates, nil
}

var _ Provider = (*MockProvider)(nil)
