package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/roster"
)

// Registry maps channels to their signup roster or running session
type Registry struct {
	slots   map[string]*Slot
	players map[string]string // playerID -> channel of their running session
	mu      sync.RWMutex
}

// NewRegistry creates a new session registry
func NewRegistry() *Registry {
	return &Registry{
		slots:   make(map[string]*Slot),
		players: make(map[string]string),
	}
}

// Do runs fn with exclusive access to the channel's slot. Calls for
// different channels run in parallel. Waiting for the slot honors ctx.
func (r *Registry) Do(ctx context.Context, channel string, fn func(*Slot) error) error {
	for {
		slot := r.slot(channel)
		select {
		case slot.lock <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		if slot.dead {
			// pruned while we waited, look the channel up again
			<-slot.lock
			continue
		}
		err := fn(slot)
		<-slot.lock
		return err
	}
}

// ChannelOf returns the channel whose running session seats the player
func (r *Registry) ChannelOf(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.players[playerID]
	return ch, ok
}

// Channels returns every channel with a slot, sorted
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.slots))
	for ch := range r.slots {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// Prune drops idle slots that hold neither a roster nor a session
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pruned := 0
	for ch, slot := range r.slots {
		select {
		case slot.lock <- struct{}{}:
		default:
			continue // busy, try again next sweep
		}
		if slot.empty() {
			slot.dead = true
			delete(r.slots, ch)
			pruned++
		}
		<-slot.lock
	}
	return pruned
}

func (r *Registry) slot(channel string) *Slot {
	r.mu.RLock()
	slot, ok := r.slots[channel]
	r.mu.RUnlock()
	if ok {
		return slot
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if slot, ok := r.slots[channel]; ok {
		return slot
	}
	slot = &Slot{channel: channel, lock: make(chan struct{}, 1), reg: r}
	r.slots[channel] = slot
	return slot
}

func (r *Registry) index(channel string, s *game.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range s.Players() {
		if other, ok := r.players[p.ID]; ok && other != channel {
			return apperr.Illegal(fmt.Sprintf("%s is already playing in another channel", p.Name))
		}
	}
	for _, p := range s.Players() {
		r.players[p.ID] = channel
	}
	return nil
}

func (r *Registry) unindex(channel string, s *game.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range s.Players() {
		if r.players[p.ID] == channel {
			delete(r.players, p.ID)
		}
	}
}

// Slot is a channel's entry in the registry. Its methods may only be used
// inside Registry.Do.
type Slot struct {
	channel string
	lock    chan struct{}
	dead    bool
	reg     *Registry

	roster  *roster.Roster
	session *game.Session
}

// Channel returns the channel the slot belongs to
func (s *Slot) Channel() string { return s.channel }

// Roster returns the signup roster, or nil
func (s *Slot) Roster() *roster.Roster { return s.roster }

// Session returns the running session, or nil
func (s *Slot) Session() *game.Session { return s.session }

// GetOrCreateRoster returns the channel's roster, creating it if needed.
// It fails with CHANNEL_BUSY while a session owns the channel.
func (s *Slot) GetOrCreateRoster(window time.Duration) (*roster.Roster, error) {
	if s.session != nil {
		return nil, apperr.New(apperr.CodeChannelBusy, "a game is already running in this channel")
	}
	if s.roster == nil {
		s.roster = roster.New(s.channel, window)
	}
	return s.roster, nil
}

// PromoteToGame turns the roster into a running session. Nothing changes
// when it fails.
func (s *Slot) PromoteToGame(variant models.Variant, assigner game.Assigner, timings game.Timings, prefix string, now time.Time) (*game.Session, error) {
	if s.session != nil {
		return nil, apperr.New(apperr.CodeChannelBusy, "a game is already running in this channel")
	}
	var players []models.Identity
	if s.roster != nil {
		players = s.roster.Players(now)
	}
	if len(players) < variant.MinPlayers {
		return nil, apperr.New(apperr.CodeInsufficientPlayers,
			fmt.Sprintf("%s needs at least %d players, %d signed up", variant.Name, variant.MinPlayers, len(players)))
	}
	assignment, err := assigner.Assign(variant, players)
	if err != nil {
		return nil, fmt.Errorf("promote %s: %w", s.channel, err)
	}
	session, err := game.Start(game.NewSessionID(), s.channel, variant, timings, prefix, players, assignment, now)
	if err != nil {
		return nil, fmt.Errorf("promote %s: %w", s.channel, err)
	}
	if err := s.reg.index(s.channel, session); err != nil {
		return nil, err
	}
	s.roster = nil
	s.session = session
	return session, nil
}

// Adopt installs a restored session
func (s *Slot) Adopt(session *game.Session) error {
	if s.session != nil {
		return apperr.New(apperr.CodeChannelBusy, "a game is already running in this channel")
	}
	if err := s.reg.index(s.channel, session); err != nil {
		return err
	}
	s.roster = nil
	s.session = session
	return nil
}

// Release frees the channel for a new roster
func (s *Slot) Release() {
	if s.session != nil {
		s.reg.unindex(s.channel, s.session)
	}
	s.roster = nil
	s.session = nil
}

func (s *Slot) empty() bool {
	return s.session == nil && (s.roster == nil || s.roster.Len() == 0)
}
