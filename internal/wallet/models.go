// Package wallet implements the in-memory travel wallet and its link to the
// weekly challenges.
package wallet

import (
	"errors"
	"time"

	"github.com/onejourney/onejourney/internal/challenge"
)

// Service errors.
var (
	ErrInvalidInput        = errors.New("invalid route data")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Defaults.
const (
	DefaultInitialBalance = 2500
	DefaultHistoryLimit   = 20
)

// TripRecord is an immutable snapshot of a paid trip.
type TripRecord struct {
	Mode     string    `json:"mode"`
	Cost     int       `json:"cost"`
	Savings  int       `json:"savings"`
	Carbon   int       `json:"carbon"`
	Duration int       `json:"duration"`
	Distance string    `json:"distance"`
	Date     time.Time `json:"date"`
}

// Wallet is a snapshot of the ledger. Trips are ordered oldest first.
type Wallet struct {
	Balance     int          `json:"balance"`
	TotalSaved  int          `json:"totalSaved"`
	Trips       []TripRecord `json:"trips"`
	CarbonSaved int          `json:"carbonSaved"`
}

// TripInput is the route a user chose to pay for.
type TripInput struct {
	Mode     string
	Cost     int
	Savings  int
	Carbon   int
	Duration int
	Distance string
}

// UseResult is the wallet after a trip plus the challenges it completed.
type UseResult struct {
	Wallet
	CompletedChallenges []challenge.Completion `json:"completedChallenges"`
}

func (w Wallet) clone() Wallet {
	out := w
	out.Trips = append([]TripRecord{}, w.Trips...)
	return out
}
