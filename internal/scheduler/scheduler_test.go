package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onejourney/onejourney/internal/scheduler"
)

type countingRoller struct {
	calls  atomic.Int32
	result bool
}

func (r *countingRoller) RolloverChallenges(context.Context) bool {
	r.calls.Add(1)
	return r.result
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := scheduler.New(scheduler.Config{
		RolloverSchedule: "every tuesday",
		Roller:           &countingRoller{},
	})
	assert.Error(t, err)
}

func TestNew_DefaultSchedule(t *testing.T) {
	s, err := scheduler.New(scheduler.Config{Roller: &countingRoller{}, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestRunRollover(t *testing.T) {
	roller := &countingRoller{result: true}
	s, err := scheduler.New(scheduler.Config{Roller: roller, Logger: zerolog.Nop()})
	require.NoError(t, err)

	s.RunRollover()
	s.RunRollover()

	assert.Equal(t, int32(2), roller.calls.Load())
}

func TestRunRollover_NoRoller(t *testing.T) {
	s, err := scheduler.New(scheduler.Config{})
	require.NoError(t, err)

	assert.NotPanics(t, s.RunRollover)
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	roller := &countingRoller{}
	s, err := scheduler.New(scheduler.Config{
		RolloverSchedule: "* * * * * *",
		Roller:           roller,
		Logger:           zerolog.Nop(),
	})
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool {
		return roller.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
