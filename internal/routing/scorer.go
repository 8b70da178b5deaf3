package routing

import (
	"math"
	"slices"
)

// Score weights.
const (
	costWeight   = 0.4
	timeWeight   = 0.3
	carbonWeight = 0.3
)

// Score ranks a batch of candidates.
//
// Savings are relative to the most expensive candidate of the unfiltered
// batch. Sub-scores are not clamped, so very long or very expensive trips
// can score below zero.
func Score(candidates []Candidate, c Constraints) []ScoredRoute {
	if len(candidates) == 0 {
		return []ScoredRoute{}
	}

	maxCost := candidates[0].Cost
	for _, cand := range candidates[1:] {
		maxCost = max(maxCost, cand.Cost)
	}

	scored := make([]ScoredRoute, 0, len(candidates))
	for _, cand := range candidates {
		if c.MaxBudget != nil && *c.MaxBudget != 0 && float64(cand.Cost) > *c.MaxBudget {
			continue
		}
		scored = append(scored, ScoredRoute{
			Candidate:  cand,
			SmartScore: SmartScore(cand),
			Savings:    maxCost - cand.Cost,
		})
	}

	switch {
	case c.Fastest:
		slices.SortStableFunc(scored, func(a, b ScoredRoute) int {
			return a.DurationMinutes - b.DurationMinutes
		})
	case c.EcoMode:
		slices.SortStableFunc(scored, func(a, b ScoredRoute) int {
			return a.CarbonGrams - b.CarbonGrams
		})
	default:
		slices.SortStableFunc(scored, func(a, b ScoredRoute) int {
			return b.SmartScore - a.SmartScore
		})
	}

	return scored
}

// SmartScore returns the weighted 0-100 score of a single candidate.
func SmartScore(c Candidate) int {
	costScore := 100 - float64(c.Cost)/5
	timeScore := 100 - float64(c.DurationMinutes)/2
	carbonScore := 100 - float64(c.CarbonGrams)/2

	return Round(costScore*costWeight + timeScore*timeWeight + carbonScore*carbonWeight)
}

// Round rounds half up, so -2.5 becomes -2.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}
