package models

import "time"

// SignupEntry is a reserved slot in a channel's signup roster
type SignupEntry struct {
	Player   Identity
	Deadline time.Time
}

// Remaining returns how long the reservation lasts past now
func (e SignupEntry) Remaining(now time.Time) time.Duration {
	return e.Deadline.Sub(now)
}
