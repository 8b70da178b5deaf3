// Package challenge tracks weekly travel challenges and their one-time bonuses.
package challenge

import "time"

// Challenge identifiers.
const (
	IDSaveMoney     = "save_money"
	IDEcoWarrior    = "eco_warrior"
	IDFrequentRider = "frequent_rider"
)

// WeekLength is the duration of one challenge window.
const WeekLength = 7 * 24 * time.Hour

// carbonMultiplier converts a trip's emitted carbon into carbon avoided
// relative to a worse option.
const carbonMultiplier = 2

// Definition is the fixed template a weekly challenge is created from.
type Definition struct {
	ID          string
	Title       string
	Description string
	Target      int
	Bonus       int
	Reward      string
	Icon        string
}

// Definitions lists the weekly challenges in display order.
var Definitions = []Definition{
	{
		ID:          IDSaveMoney,
		Title:       "Smart Saver",
		Description: "Save ₹500 this week",
		Target:      500,
		Bonus:       100,
		Reward:      "🏆 +100 bonus",
		Icon:        "💰",
	},
	{
		ID:          IDEcoWarrior,
		Title:       "Eco Warrior",
		Description: "Save 500g CO₂ this week",
		Target:      500,
		Bonus:       50,
		Reward:      "🌳 Plant a tree",
		Icon:        "🌿",
	},
	{
		ID:          IDFrequentRider,
		Title:       "Travel Pro",
		Description: "Take 10 trips this week",
		Target:      10,
		Reward:      "⭐ Premium Badge",
		Icon:        "🚀",
	},
}

// Challenge is the progress of one challenge in the current week.
// Current always stays within [0, Target].
type Challenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	Current     int    `json:"current"`
	Reward      string `json:"reward"`
	Icon        string `json:"icon"`
}

// Completed reports whether the challenge target has been reached.
func (c Challenge) Completed() bool {
	return c.Current >= c.Target
}

// Set is the challenge window for one week.
type Set struct {
	WeekStart time.Time   `json:"weekStart"`
	WeekEnd   time.Time   `json:"weekEnd"`
	Targets   []Challenge `json:"targets"`
	Completed []string    `json:"completed"`
}

// Completion is a challenge newly completed by a trip, with the bonus it pays.
type Completion struct {
	Challenge
	Bonus int `json:"bonus"`
}

func newSet(now time.Time) Set {
	targets := make([]Challenge, 0, len(Definitions))
	for _, d := range Definitions {
		targets = append(targets, Challenge{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Target:      d.Target,
			Reward:      d.Reward,
			Icon:        d.Icon,
		})
	}
	return Set{
		WeekStart: now,
		WeekEnd:   now.Add(WeekLength),
		Targets:   targets,
		Completed: []string{},
	}
}

func (s Set) clone() Set {
	out := s
	out.Targets = append([]Challenge(nil), s.Targets...)
	out.Completed = append([]string{}, s.Completed...)
	return out
}

func bonusFor(id string) int {
	for _, d := range Definitions {
		if d.ID == id {
			return d.Bonus
		}
	}
	return 0
}
