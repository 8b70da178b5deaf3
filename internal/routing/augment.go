package routing

import "strings"

// defaultAugmentKm is used when the first real candidate has no known distance.
const defaultAugmentKm = 10

// Augment broadens a real candidate set with synthetic modes the directions
// provider does not cover: a bike taxi always, and walk + metro unless a
// walking option is already present. The input slice is not modified.
func Augment(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	first := candidates[0]
	km := first.DistanceKm
	if km <= 0 {
		km = defaultAugmentKm
	}
	minutes := float64(first.DurationMinutes)

	out := make([]Candidate, len(candidates), len(candidates)+2)
	copy(out, candidates)

	out = append(out, Candidate{
		ID:              len(candidates),
		Mode:            ModeBikeTaxi.Label(),
		DurationMinutes: Round(minutes * 0.85),
		Cost:            Round(km * 11),
		CarbonGrams:     Round(km * 30),
		DistanceLabel:   first.DistanceLabel,
		DistanceKm:      first.DistanceKm,
		Steps:           []string{"Book bike taxi", "Direct ride", "Arrive at destination"},
	})

	if !hasWalkingOption(candidates) {
		out = append(out, Candidate{
			ID:              len(candidates) + 1,
			Mode:            ModeWalkMetro.Label(),
			DurationMinutes: Round(minutes * 1.2),
			Cost:            Round(km * 3.5),
			CarbonGrams:     Round(km * 8),
			DistanceLabel:   first.DistanceLabel,
			DistanceKm:      first.DistanceKm,
			Steps:           []string{"Walk to metro station", "Take metro", "Walk to destination"},
		})
	}

	return out
}

func hasWalkingOption(candidates []Candidate) bool {
	for _, c := range candidates {
		if strings.Contains(c.Mode, "Walk") {
			return true
		}
	}
	return false
}
