package models

import (
	"github.com/onejourney/onejourney/internal/challenge"
	"github.com/onejourney/onejourney/internal/routing"
	"github.com/onejourney/onejourney/internal/wallet"
)

// OptimizeRequest asks for ranked trip options between two places.
type OptimizeRequest struct {
	Source      string              `json:"source"`
	Destination string              `json:"destination"`
	Constraints routing.Constraints `json:"constraints"`
}

// OptimizeResponse carries the ranked options.
type OptimizeResponse struct {
	Success       bool                  `json:"success"`
	Routes        []routing.ScoredRoute `json:"routes"`
	Source        string                `json:"source"`
	Destination   string                `json:"destination"`
	UsingRealData bool                  `json:"usingRealData"`
}

// UseRouteRequest is the route the user chose to pay for. It accepts a full
// scored route as returned by /api/optimize; unknown fields are ignored.
type UseRouteRequest struct {
	Mode     string  `json:"mode"`
	Cost     float64 `json:"cost"`
	Savings  float64 `json:"savings"`
	Carbon   float64 `json:"carbon"`
	Duration float64 `json:"duration"`
	Distance string  `json:"distance"`
}

// TripInput converts the request into the ledger's input, rounding
// fractional numbers half up.
func (r UseRouteRequest) TripInput() wallet.TripInput {
	return wallet.TripInput{
		Mode:     r.Mode,
		Cost:     routing.Round(r.Cost),
		Savings:  routing.Round(r.Savings),
		Carbon:   routing.Round(r.Carbon),
		Duration: routing.Round(r.Duration),
		Distance: r.Distance,
	}
}

// TopUpRequest adds money to the wallet.
type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

// TopUpResponse returns the wallet after a top-up.
type TopUpResponse struct {
	Success bool          `json:"success"`
	Wallet  wallet.Wallet `json:"wallet"`
}

// AskRequest is a free-text question for the assistant.
type AskRequest struct {
	Message string `json:"message"`
}

// AskResponse carries the assistant's reply or a fallback sentence.
type AskResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

// HistoryResponse lists recent trips, newest first.
type HistoryResponse struct {
	Success bool                `json:"success"`
	Trips   []wallet.TripRecord `json:"trips"`
}

// ChallengesResponse is the current week's challenge set.
type ChallengesResponse struct {
	Success          bool          `json:"success"`
	Challenges       challenge.Set `json:"challenges"`
	TotalCarbonSaved int           `json:"totalCarbonSaved"`
}
