// Package roster holds the pre-game signup list of a channel.
package roster

import (
	"slices"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
)

// DefaultWindow is how long a reservation lasts without activity.
const DefaultWindow = time.Hour

// Roster is the ordered signup list of one channel. It is not safe for
// concurrent use; the registry serializes access per channel.
type Roster struct {
	channel string
	window  time.Duration
	entries []models.SignupEntry
}

// New creates an empty roster for a channel.
func New(channel string, window time.Duration) *Roster {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Roster{channel: channel, window: window}
}

// Channel returns the owning channel.
func (r *Roster) Channel() string { return r.channel }

// Window returns the reservation length.
func (r *Roster) Window() time.Duration { return r.window }

// Reserve appends a player to the roster.
func (r *Roster) Reserve(player models.Identity, now time.Time) error {
	if r.Contains(player.ID) {
		return apperr.New(apperr.CodeAlreadySignedUp, player.Name+" is already signed up")
	}
	r.entries = append(r.entries, models.SignupEntry{Player: player, Deadline: now.Add(r.window)})
	return nil
}

// Withdraw removes a player. It reports whether the player was signed up.
func (r *Roster) Withdraw(playerID string) bool {
	n := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e models.SignupEntry) bool {
		return e.Player.ID == playerID
	})
	return len(r.entries) != n
}

// Touch refreshes a signed-up player's reservation.
func (r *Roster) Touch(playerID string, now time.Time) bool {
	for i := range r.entries {
		if r.entries[i].Player.ID == playerID {
			r.entries[i].Deadline = now.Add(r.window)
			return true
		}
	}
	return false
}

// Contains reports whether the player holds a slot.
func (r *Roster) Contains(playerID string) bool {
	return slices.ContainsFunc(r.entries, func(e models.SignupEntry) bool {
		return e.Player.ID == playerID
	})
}

// List returns the live entries in signup order.
func (r *Roster) List(now time.Time) []models.SignupEntry {
	out := make([]models.SignupEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if now.Before(e.Deadline) {
			out = append(out, e)
		}
	}
	return out
}

// Players returns the identities of the live entries in signup order.
func (r *Roster) Players(now time.Time) []models.Identity {
	live := r.List(now)
	out := make([]models.Identity, len(live))
	for i, e := range live {
		out[i] = e.Player
	}
	return out
}

// ExpireStale drops every entry whose deadline has passed and returns them.
func (r *Roster) ExpireStale(now time.Time) []models.SignupEntry {
	var expired []models.SignupEntry
	r.entries = slices.DeleteFunc(r.entries, func(e models.SignupEntry) bool {
		if now.Before(e.Deadline) {
			return false
		}
		expired = append(expired, e)
		return true
	})
	return expired
}

// Len returns the number of entries, including ones not yet swept.
func (r *Roster) Len() int { return len(r.entries) }
