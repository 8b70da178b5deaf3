package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onejourney/onejourney/internal/events"
)

// ErrUnknownEventType is returned by Apply for event types the digest does not track.
var ErrUnknownEventType = errors.New("unknown event type")

// DigestSnapshot summarizes the events applied in one reporting window.
type DigestSnapshot struct {
	Since time.Time
	Until time.Time

	Trips         int
	TripsByMode   map[string]int
	Spent         int
	Saved         int
	CarbonEmitted int

	TopUps   int
	ToppedUp int

	ChallengesCompleted int
	BonusCredited       int
	Rollovers           int

	// LastBalance is the most recent balance reported by an event, or -1.
	LastBalance int

	Duplicates int
}

// Digest aggregates domain events into running totals. Safe for concurrent use.
type Digest struct {
	mu sync.Mutex

	now     func() time.Time
	maxSeen int
	seen    map[string]struct{}
	current DigestSnapshot
}

// NewDigest creates an empty digest. now may be nil.
func NewDigest(now func() time.Time, maxTrackedEvents int) *Digest {
	if now == nil {
		now = time.Now
	}
	if maxTrackedEvents <= 0 {
		maxTrackedEvents = DefaultConfig().MaxTrackedEvents
	}
	d := &Digest{
		now:     now,
		maxSeen: maxTrackedEvents,
	}
	d.reset(now())
	return d
}

// Apply folds one event into the totals. It reports false when the event ID
// was already applied in the current window.
func (d *Digest) Apply(e events.Event) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e.ID != "" {
		if _, dup := d.seen[e.ID]; dup {
			d.current.Duplicates++
			return false, nil
		}
	}

	switch e.Type {
	case events.TypeTripCompleted:
		var p events.TripCompleted
		if err := e.Decode(&p); err != nil {
			return false, err
		}
		d.current.Trips++
		d.current.TripsByMode[p.Mode]++
		d.current.Spent += p.Cost
		d.current.Saved += p.Savings
		d.current.CarbonEmitted += p.Carbon
		d.current.LastBalance = p.Balance

	case events.TypeWalletToppedUp:
		var p events.WalletToppedUp
		if err := e.Decode(&p); err != nil {
			return false, err
		}
		d.current.TopUps++
		d.current.ToppedUp += p.Amount
		d.current.LastBalance = p.Balance

	case events.TypeChallengeCompleted:
		var p events.ChallengeCompleted
		if err := e.Decode(&p); err != nil {
			return false, err
		}
		d.current.ChallengesCompleted++
		d.current.BonusCredited += p.Bonus

	case events.TypeChallengesRollover:
		d.current.Rollovers++

	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}

	d.remember(e.ID)
	return true, nil
}

// Snapshot returns a copy of the current window without resetting it.
func (d *Digest) Snapshot() DigestSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := d.current
	out.Until = d.now()
	out.TripsByMode = make(map[string]int, len(d.current.TripsByMode))
	for mode, n := range d.current.TripsByMode {
		out.TripsByMode[mode] = n
	}
	return out
}

// Flush returns the current window and starts a new one.
func (d *Digest) Flush() DigestSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	out := d.current
	out.Until = now
	d.reset(now)
	return out
}

func (d *Digest) reset(now time.Time) {
	d.seen = make(map[string]struct{})
	d.current = DigestSnapshot{
		Since:       now,
		TripsByMode: make(map[string]int),
		LastBalance: -1,
	}
}

// remember records an ID for deduplication. The set is cleared when full;
// redeliveries arrive close together so old IDs matter little.
func (d *Digest) remember(id string) {
	if id == "" {
		return
	}
	if len(d.seen) >= d.maxSeen {
		d.seen = make(map[string]struct{})
	}
	d.seen[id] = struct{}{}
}
