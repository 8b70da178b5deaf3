package challenge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onejourney/onejourney/internal/challenge"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func progress(set challenge.Set) map[string]int {
	out := map[string]int{}
	for _, c := range set.Targets {
		out[c.ID] = c.Current
	}
	return out
}

func TestNewTracker_FreshWeek(t *testing.T) {
	clock := newClock()
	tracker := challenge.NewTracker(clock.Now)

	set := tracker.Current()

	assert.Equal(t, clock.t, set.WeekStart)
	assert.Equal(t, clock.t.Add(7*24*time.Hour), set.WeekEnd)
	require.Len(t, set.Targets, 3)
	assert.Empty(t, set.Completed)

	assert.Equal(t, "save_money", set.Targets[0].ID)
	assert.Equal(t, "Smart Saver", set.Targets[0].Title)
	assert.Equal(t, 500, set.Targets[0].Target)
	assert.Equal(t, "eco_warrior", set.Targets[1].ID)
	assert.Equal(t, 500, set.Targets[1].Target)
	assert.Equal(t, "frequent_rider", set.Targets[2].ID)
	assert.Equal(t, 10, set.Targets[2].Target)
	assert.Equal(t, map[string]int{"save_money": 0, "eco_warrior": 0, "frequent_rider": 0}, progress(set))
}

func TestTracker_OnTrip(t *testing.T) {
	tracker := challenge.NewTracker(newClock().Now)

	tracker.OnTrip(120, 30)

	assert.Equal(t, map[string]int{
		"save_money":     120,
		"eco_warrior":    60,
		"frequent_rider": 1,
	}, progress(tracker.Current()))
}

func TestTracker_OnTripClampsAtTarget(t *testing.T) {
	tracker := challenge.NewTracker(newClock().Now)

	for range 12 {
		tracker.OnTrip(400, 300)
	}

	assert.Equal(t, map[string]int{
		"save_money":     500,
		"eco_warrior":    500,
		"frequent_rider": 10,
	}, progress(tracker.Current()))
}

func TestTracker_OnTripIgnoresNegativeInputs(t *testing.T) {
	tracker := challenge.NewTracker(newClock().Now)

	tracker.OnTrip(50, 10)
	tracker.OnTrip(-200, -40)

	p := progress(tracker.Current())
	assert.Equal(t, 50, p["save_money"])
	assert.Equal(t, 20, p["eco_warrior"])
	assert.Equal(t, 2, p["frequent_rider"])
}

func TestTracker_SweepAwardsOnce(t *testing.T) {
	tracker := challenge.NewTracker(newClock().Now)

	for range 4 {
		tracker.OnTrip(100, 0)
		assert.Empty(t, tracker.Sweep())
	}

	tracker.OnTrip(100, 0)
	completions := tracker.Sweep()
	require.Len(t, completions, 1)
	assert.Equal(t, "save_money", completions[0].ID)
	assert.Equal(t, 100, completions[0].Bonus)
	assert.Equal(t, 500, completions[0].Current)

	tracker.OnTrip(100, 0)
	assert.Empty(t, tracker.Sweep())
	assert.Equal(t, []string{"save_money"}, tracker.Current().Completed)
}

func TestTracker_SweepBonuses(t *testing.T) {
	tracker := challenge.NewTracker(newClock().Now)

	for range 10 {
		tracker.OnTrip(0, 25)
	}

	completions := tracker.Sweep()
	require.Len(t, completions, 2)

	bonuses := map[string]int{}
	for _, c := range completions {
		bonuses[c.ID] = c.Bonus
	}
	assert.Equal(t, map[string]int{"eco_warrior": 50, "frequent_rider": 0}, bonuses)
}

func TestTracker_RolloverAfterWeekEnd(t *testing.T) {
	clock := newClock()
	tracker := challenge.NewTracker(clock.Now)

	tracker.OnTrip(500, 0)
	require.Len(t, tracker.Sweep(), 1)

	clock.Advance(7 * 24 * time.Hour)
	assert.False(t, tracker.Rollover(), "the week end itself is still inside the window")

	clock.Advance(time.Second)
	set := tracker.Current()

	assert.Equal(t, clock.t, set.WeekStart)
	assert.Equal(t, clock.t.Add(7*24*time.Hour), set.WeekEnd)
	assert.Empty(t, set.Completed)
	assert.Equal(t, 0, progress(set)["save_money"])

	assert.False(t, tracker.Rollover(), "second check in the new window is a no-op")

	tracker.OnTrip(500, 0)
	assert.Len(t, tracker.Sweep(), 1, "bonus is available again in the new week")
}

func TestTracker_RolloverWithoutCompletions(t *testing.T) {
	clock := newClock()
	tracker := challenge.NewTracker(clock.Now)

	tracker.OnTrip(120, 0)
	clock.Advance(8 * 24 * time.Hour)

	assert.True(t, tracker.Rollover())
	assert.Equal(t, 0, progress(tracker.Current())["save_money"])
}

func TestTracker_CurrentReturnsCopy(t *testing.T) {
	tracker := challenge.NewTracker(newClock().Now)

	set := tracker.Current()
	set.Targets[0].Current = 499
	set.Completed = append(set.Completed, "save_money")

	fresh := tracker.Current()
	assert.Equal(t, 0, fresh.Targets[0].Current)
	assert.Empty(t, fresh.Completed)
}

func TestNewTracker_NilClock(t *testing.T) {
	tracker := challenge.NewTracker(nil)
	set := tracker.Current()

	assert.WithinDuration(t, time.Now(), set.WeekStart, time.Minute)
}
