package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/notify"
	"github.com/aaronzipp/wolfden/internal/render"
)

// Session is a running game in one channel. It is not safe for concurrent
// use; callers hold the channel's exclusive access while touching it.
type Session struct {
	id      string
	channel string
	variant models.Variant
	timings Timings
	prefix  string // command prefix used in hints

	players []*models.Player // seating order
	index   map[string]*models.Player

	phase     models.Phase
	cycle     int
	deadline  time.Time
	startedAt time.Time

	votes        []models.Vote
	actions      []models.NightAction
	eliminations []models.Elimination

	winner  models.Faction
	aborted bool
	removed int

	notices []notify.Notice
}

// Start seats the roster with their assigned roles and opens day 1. An
// empty prefix means DefaultPrefix.
func Start(id, channel string, variant models.Variant, timings Timings, prefix string, roster []models.Identity, assign Assignment, now time.Time) (*Session, error) {
	if len(roster) < variant.MinPlayers {
		return nil, apperr.New(apperr.CodeInsufficientPlayers,
			fmt.Sprintf("%s needs at least %d players, %d signed up", variant.Name, variant.MinPlayers, len(roster)))
	}
	if !timings.valid() {
		return nil, fmt.Errorf("start session: phase lengths must be positive")
	}

	s := &Session{
		id:        id,
		channel:   channel,
		variant:   variant,
		timings:   timings,
		prefix:    orDefaultPrefix(prefix),
		index:     make(map[string]*models.Player, len(roster)),
		startedAt: now,
	}
	for _, ident := range roster {
		role, ok := assign.Roles[ident.ID]
		if !ok || !role.Valid() {
			return nil, fmt.Errorf("start session: no valid role for player %s", ident.ID)
		}
		if _, dup := s.index[ident.ID]; dup {
			return nil, fmt.Errorf("start session: player %s seated twice", ident.ID)
		}
		p := &models.Player{ID: ident.ID, Name: ident.Name, Role: role, Alive: true}
		if assign.GunHolder == ident.ID {
			p.GiveItem(models.ItemGun)
		}
		s.players = append(s.players, p)
		s.index[p.ID] = p
	}
	if w := EvaluateWinner(variant.WinRule, s.players); w != "" {
		return nil, fmt.Errorf("start session: role assignment is already decided for %s", w)
	}

	s.announce(fmt.Sprintf("A game of %s begins with %d players.\n%s",
		variant.Name, len(s.players), render.PlayerList(s.players)))
	for _, p := range s.players {
		s.whisper(p.ID, render.RoleCard(p, s.teammates(p), s.prefix))
	}
	s.enterDay(now)
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Channel returns the channel that owns the session
func (s *Session) Channel() string { return s.channel }

// Variant returns the ruleset being played
func (s *Session) Variant() models.Variant { return s.variant }

// Phase returns the current phase
func (s *Session) Phase() models.Phase { return s.phase }

// Cycle returns the day/night counter, starting at 1
func (s *Session) Cycle() int { return s.cycle }

// Deadline returns when the current phase times out
func (s *Session) Deadline() time.Time { return s.deadline }

// Winner returns the winning faction once the game is finished
func (s *Session) Winner() models.Faction { return s.winner }

// Aborted reports whether the game ended without a winner
func (s *Session) Aborted() bool { return s.aborted }

// Finished reports whether the session reached FINISHED
func (s *Session) Finished() bool { return s.phase == models.PhaseFinished }

// Players returns every seated player in seating order
func (s *Session) Players() []*models.Player { return s.players }

// Eliminations returns the elimination log
func (s *Session) Eliminations() []models.Elimination { return s.eliminations }

// Votes returns the votes cast in the current day vote
func (s *Session) Votes() []models.Vote { return s.votes }

// Player returns the seated player with the given ID
func (s *Session) Player(id string) (*models.Player, bool) {
	p, ok := s.index[id]
	return p, ok
}

// Living returns the living players in seating order
func (s *Session) Living() []*models.Player {
	living := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Alive {
			living = append(living, p)
		}
	}
	return living
}

// IsAlive reports whether id is a living player of this session
func (s *Session) IsAlive(id string) bool {
	p, ok := s.index[id]
	return ok && p.Alive
}

// Identify resolves a command argument to a player: an ID, a position in
// the living list, or a case-insensitive name.
func (s *Session) Identify(query string) (*models.Player, error) {
	query = strings.TrimPrefix(strings.TrimSpace(query), "@")
	if p, ok := s.index[query]; ok {
		return p, nil
	}
	if n, err := strconv.Atoi(query); err == nil {
		living := s.Living()
		if n >= 1 && n <= len(living) {
			return living[n-1], nil
		}
		return nil, apperr.New(apperr.CodeInvalidArgument, fmt.Sprintf("there is no player number %d", n))
	}
	var match *models.Player
	for _, p := range s.players {
		if strings.EqualFold(p.Name, query) {
			if match != nil {
				return nil, apperr.New(apperr.CodeInvalidArgument, fmt.Sprintf("%q matches more than one player, use their number", query))
			}
			match = p
		}
	}
	if match == nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, fmt.Sprintf("no player called %q in this game", query))
	}
	return match, nil
}

// Names maps player IDs to display names
func (s *Session) Names() map[string]string {
	names := make(map[string]string, len(s.players))
	for _, p := range s.players {
		names[p.ID] = p.Name
	}
	return names
}

// OwesAction reports whether the player has a pending action in the
// current phase.
func (s *Session) OwesAction(id string) bool {
	p, ok := s.index[id]
	if !ok || !p.Alive {
		return false
	}
	switch s.phase {
	case models.PhaseDayVote:
		return !s.hasVoted(id)
	case models.PhaseNight:
		return p.Role.NightAction() != "" && !s.hasActed(id)
	default:
		return false
	}
}

// Advance moves past the current phase once its deadline has passed. It
// reports whether anything changed.
func (s *Session) Advance(now time.Time) bool {
	if s.Finished() || now.Before(s.deadline) {
		return false
	}
	switch s.phase {
	case models.PhaseDayDiscussion:
		s.enterVote(now)
	case models.PhaseDayVote:
		s.resolveDay(now)
	case models.PhaseNight:
		s.resolveNight(now)
	default:
		return false
	}
	return true
}

// Drain returns and clears the notices produced since the last call.
func (s *Session) Drain() []notify.Notice {
	out := s.notices
	s.notices = nil
	return out
}

// RoleCard re-sends the private role message to a player.
func (s *Session) RoleCard(id string) error {
	p, ok := s.index[id]
	if !ok {
		return apperr.Illegal("you are not playing in this game")
	}
	s.whisper(p.ID, render.RoleCard(p, s.teammates(p), s.prefix))
	return nil
}

// Abort ends the game without a winner.
func (s *Session) Abort(reason string, now time.Time) error {
	if s.Finished() {
		return apperr.Illegal("the game is already over")
	}
	s.announce("The game is being aborted: " + reason)
	s.aborted = true
	s.finish("", now)
	return nil
}

func (s *Session) enterDay(now time.Time) {
	s.cycle++
	s.phase = models.PhaseDayDiscussion
	s.deadline = now.Add(s.timings.Discussion)
	s.votes = nil
	s.actions = nil
	s.announce(fmt.Sprintf("Day %d begins. Discuss! Voting opens in %s.",
		s.cycle, render.Remaining(s.deadline, now)))
}

func (s *Session) enterVote(now time.Time) {
	s.phase = models.PhaseDayVote
	s.deadline = now.Add(s.timings.Vote)
	s.votes = nil
	s.announce(fmt.Sprintf("Voting is open (%s): %svote <player> or %svote none.\n%s",
		render.Remaining(s.deadline, now), s.prefix, s.prefix, render.PlayerList(s.Living())))
}

func (s *Session) enterNight(now time.Time) {
	s.phase = models.PhaseNight
	s.deadline = now.Add(s.timings.Night)
	s.votes = nil
	s.actions = nil
	s.announce(fmt.Sprintf("Night %d falls. Night roles, check your messages.", s.cycle))
	for _, p := range s.Living() {
		if p.Role.NightAction() != "" {
			s.whisper(p.ID, fmt.Sprintf("Night %d: choose your target (%s).\n%s",
				s.cycle, render.Remaining(s.deadline, now), render.PlayerList(s.Living())))
		}
	}
}

// checkWin finishes the session if a faction has won. It reports whether
// the game is over.
func (s *Session) checkWin(now time.Time) bool {
	if s.Finished() {
		return true
	}
	living := s.Living()
	if len(living) == 0 {
		s.aborted = true
		s.finish("", now)
		return true
	}
	if w := EvaluateWinner(s.variant.WinRule, living); w != "" {
		s.finish(w, now)
		return true
	}
	return false
}

func (s *Session) finish(winner models.Faction, now time.Time) {
	s.phase = models.PhaseFinished
	s.winner = winner
	s.deadline = now
	s.votes = nil
	s.actions = nil
	s.announce(render.Results(winner, s.aborted, s.players))
}

// eliminate kills a player for a faction-attributed cause. Their items
// are discarded.
func (s *Session) eliminate(p *models.Player, cause models.Cause, now time.Time) {
	p.Alive = false
	p.Items = nil
	s.eliminations = append(s.eliminations, models.Elimination{
		Player: p.ID, Cause: cause, Cycle: s.cycle, Phase: s.phase, At: now,
	})
	s.forget(p.ID)
}

// forget drops votes and night actions by or against a player.
func (s *Session) forget(id string) {
	s.votes = slices.DeleteFunc(s.votes, func(v models.Vote) bool {
		return v.Voter == id || v.Target == id
	})
	s.actions = slices.DeleteFunc(s.actions, func(a models.NightAction) bool {
		return a.Actor == id || a.Target == id
	})
}

func orDefaultPrefix(prefix string) string {
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

func (s *Session) teammates(p *models.Player) []string {
	if p.Role != models.RoleWolf {
		return nil
	}
	var names []string
	for _, o := range s.players {
		if o.ID != p.ID && o.Role == models.RoleWolf {
			names = append(names, o.Name)
		}
	}
	return names
}

func (s *Session) living(id string) (*models.Player, error) {
	p, ok := s.index[id]
	if !ok {
		return nil, apperr.Illegal("you are not playing in this game")
	}
	if !p.Alive {
		return nil, apperr.Illegal("dead players cannot act")
	}
	return p, nil
}

func (s *Session) target(id string) (*models.Player, error) {
	p, ok := s.index[id]
	if !ok {
		return nil, apperr.Illegal("that player is not in this game")
	}
	if !p.Alive {
		return nil, apperr.Illegal(p.Name + " is already dead")
	}
	return p, nil
}

func (s *Session) announce(text string) {
	s.notices = append(s.notices, notify.ToChannel(s.channel, text))
}

func (s *Session) whisper(user, text string) {
	s.notices = append(s.notices, notify.ToUser(user, text))
}
