package challenge

import (
	"slices"
	"time"
)

// Tracker holds the current challenge week. It is not safe for concurrent
// use; the wallet serializes access together with the balance it credits.
type Tracker struct {
	now func() time.Time
	set Set
}

// NewTracker starts a fresh week at the current time. A nil clock uses time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now: now,
		set: newSet(now()),
	}
}

// Current runs the rollover check and returns a copy of the current week.
func (t *Tracker) Current() Set {
	t.Rollover()
	return t.set.clone()
}

// Rollover replaces the week when it has ended. It reports whether a reset
// happened; calling it again within the new window is a no-op.
func (t *Tracker) Rollover() bool {
	now := t.now()
	if !now.After(t.set.WeekEnd) {
		return false
	}
	t.set = newSet(now)
	return true
}

// OnTrip credits a trip's savings, avoided carbon and the trip itself to the
// matching challenges. Negative inputs are ignored.
func (t *Tracker) OnTrip(savings, carbon int) {
	for i := range t.set.Targets {
		c := &t.set.Targets[i]
		switch c.ID {
		case IDSaveMoney:
			c.Current = clamp(c.Current+max(savings, 0), c.Target)
		case IDEcoWarrior:
			c.Current = clamp(c.Current+max(carbon, 0)*carbonMultiplier, c.Target)
		case IDFrequentRider:
			c.Current = clamp(c.Current+1, c.Target)
		}
	}
}

// Sweep logs every reached target that has not been rewarded this week and
// returns them. Each challenge is returned at most once per week.
func (t *Tracker) Sweep() []Completion {
	completions := []Completion{}
	for _, c := range t.set.Targets {
		if !c.Completed() || slices.Contains(t.set.Completed, c.ID) {
			continue
		}
		t.set.Completed = append(t.set.Completed, c.ID)
		completions = append(completions, Completion{
			Challenge: c,
			Bonus:     bonusFor(c.ID),
		})
	}
	return completions
}

func clamp(v, upper int) int {
	return min(max(v, 0), upper)
}
