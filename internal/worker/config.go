// Package worker consumes OneJourney domain events and reports periodic
// travel digests.
package worker

import (
	"time"
)

// Config holds configuration for the event worker.
type Config struct {
	// MaxOutstandingMessages bounds unacknowledged messages held by the subscriber.
	// Default: 10
	MaxOutstandingMessages int

	// MaxExtension is how long a message's ack deadline may be extended.
	// Default: 10 minutes
	MaxExtension time.Duration

	// DigestSchedule is a six-field cron spec for the digest report.
	// Default: hourly
	DigestSchedule string

	// MaxTrackedEvents caps the event IDs remembered for deduplication
	// between two digest reports.
	// Default: 10000
	MaxTrackedEvents int
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() Config {
	return Config{
		MaxOutstandingMessages: 10,
		MaxExtension:           10 * time.Minute,
		DigestSchedule:         "0 0 * * * *",
		MaxTrackedEvents:       10000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxOutstandingMessages <= 0 {
		c.MaxOutstandingMessages = d.MaxOutstandingMessages
	}
	if c.MaxExtension <= 0 {
		c.MaxExtension = d.MaxExtension
	}
	if c.DigestSchedule == "" {
		c.DigestSchedule = d.DigestSchedule
	}
	if c.MaxTrackedEvents <= 0 {
		c.MaxTrackedEvents = d.MaxTrackedEvents
	}
	return c
}
