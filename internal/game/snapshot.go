package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
)

// Snapshot is the persisted form of a session, enough to resume it after
// a restart.
type Snapshot struct {
	Version      int                  `json:"version"`
	ID           string               `json:"id"`
	Channel      string               `json:"channel"`
	Variant      models.Variant       `json:"variant"`
	Timings      Timings              `json:"timings"`
	Players      []models.Player      `json:"players"`
	Phase        models.Phase         `json:"phase"`
	Cycle        int                  `json:"cycle"`
	Deadline     time.Time            `json:"deadline"`
	StartedAt    time.Time            `json:"started_at"`
	Votes        []models.Vote        `json:"votes,omitempty"`
	Actions      []models.NightAction `json:"actions,omitempty"`
	Eliminations []models.Elimination `json:"eliminations,omitempty"`
	Winner       models.Faction       `json:"winner,omitempty"`
	Aborted      bool                 `json:"aborted,omitempty"`
	Removed      int                  `json:"removed,omitempty"`
}

// Snapshot captures the session's full state.
func (s *Session) Snapshot() Snapshot {
	players := make([]models.Player, len(s.players))
	for i, p := range s.players {
		players[i] = *p
		players[i].Items = slices.Clone(p.Items)
	}
	return Snapshot{
		Version:      SnapshotVersion,
		ID:           s.id,
		Channel:      s.channel,
		Variant:      s.variant,
		Timings:      s.timings,
		Players:      players,
		Phase:        s.phase,
		Cycle:        s.cycle,
		Deadline:     s.deadline,
		StartedAt:    s.startedAt,
		Votes:        slices.Clone(s.votes),
		Actions:      slices.Clone(s.actions),
		Eliminations: slices.Clone(s.eliminations),
		Winner:       s.winner,
		Aborted:      s.aborted,
		Removed:      s.removed,
	}
}

// Restore rebuilds a session from a snapshot. Snapshots that violate the
// session invariants are rejected with CORRUPT_SNAPSHOT. The prefix is not
// part of the snapshot; an empty one means DefaultPrefix.
func Restore(snap Snapshot, prefix string) (*Session, error) {
	if snap.Version != SnapshotVersion {
		return nil, apperr.New(apperr.CodeCorruptSnapshot, fmt.Sprintf("unsupported snapshot version %d", snap.Version))
	}
	s := &Session{
		id:           snap.ID,
		channel:      snap.Channel,
		variant:      snap.Variant,
		timings:      snap.Timings,
		prefix:       orDefaultPrefix(prefix),
		index:        make(map[string]*models.Player, len(snap.Players)),
		phase:        snap.Phase,
		cycle:        snap.Cycle,
		deadline:     snap.Deadline,
		startedAt:    snap.StartedAt,
		votes:        slices.Clone(snap.Votes),
		actions:      slices.Clone(snap.Actions),
		eliminations: slices.Clone(snap.Eliminations),
		winner:       snap.Winner,
		aborted:      snap.Aborted,
		removed:      snap.Removed,
	}
	for _, sp := range snap.Players {
		p := sp
		p.Items = slices.Clone(sp.Items)
		if _, dup := s.index[p.ID]; dup {
			return nil, apperr.New(apperr.CodeCorruptSnapshot, "player "+p.ID+" seated twice")
		}
		s.players = append(s.players, &p)
		s.index[p.ID] = &p
	}
	if err := s.Check(); err != nil {
		return nil, apperr.Wrap(apperr.CodeCorruptSnapshot, "restore session "+snap.ID, err)
	}
	return s, nil
}

// Encode serializes a snapshot.
func Encode(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// Decode parses a serialized snapshot.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, apperr.Wrap(apperr.CodeCorruptSnapshot, "decode snapshot", err)
	}
	return snap, nil
}

// Check verifies the session invariants.
func (s *Session) Check() error {
	fail := func(format string, args ...any) error {
		return apperr.New(apperr.CodeInvariant, fmt.Sprintf(format, args...))
	}
	if s.id == "" || s.channel == "" {
		return fail("session without id or channel")
	}
	if len(s.players) == 0 {
		return fail("session without players")
	}
	if !s.phase.Valid() {
		return fail("unknown phase %q", s.phase)
	}
	if s.cycle < 1 {
		return fail("cycle %d out of range", s.cycle)
	}
	if !s.timings.valid() {
		return fail("non-positive phase lengths")
	}

	dead := make(map[string]int)
	for _, p := range s.players {
		if !p.Role.Valid() {
			return fail("player %s has unknown role %q", p.ID, p.Role)
		}
		if !p.Alive {
			dead[p.ID] = 0
			if len(p.Items) > 0 {
				return fail("dead player %s still holds items", p.ID)
			}
		}
	}
	for _, e := range s.eliminations {
		n, ok := dead[e.Player]
		if !ok {
			return fail("elimination of %s who is alive or unknown", e.Player)
		}
		dead[e.Player] = n + 1
	}
	for id, n := range dead {
		if n != 1 {
			return fail("player %s has %d elimination entries", id, n)
		}
	}
	removals := 0
	for _, e := range s.eliminations {
		if e.Cause == models.CauseRemoved {
			removals++
		}
	}
	if removals != s.removed {
		return fail("%d removals counted but %d logged", s.removed, removals)
	}

	if s.Finished() {
		return nil
	}
	if s.winner != "" || s.aborted {
		return fail("winner recorded before the game finished")
	}
	living := s.Living()
	if len(living) == 0 || EvaluateWinner(s.variant.WinRule, living) != "" {
		return fail("game should already be over")
	}

	if len(s.votes) > 0 && s.phase != models.PhaseDayVote {
		return fail("votes recorded outside of day vote")
	}
	voters := make(map[string]bool)
	for _, v := range s.votes {
		if !s.IsAlive(v.Voter) || voters[v.Voter] {
			return fail("invalid vote by %s", v.Voter)
		}
		if v.Target != models.Abstain && !s.IsAlive(v.Target) {
			return fail("vote for non-living %s", v.Target)
		}
		voters[v.Voter] = true
	}

	if len(s.actions) > 0 && s.phase != models.PhaseNight {
		return fail("night actions recorded outside of night")
	}
	actors := make(map[string]bool)
	for _, a := range s.actions {
		p, ok := s.index[a.Actor]
		if !ok || !p.Alive || actors[a.Actor] || p.Role.NightAction() != a.Kind {
			return fail("invalid night action by %s", a.Actor)
		}
		if !s.IsAlive(a.Target) {
			return fail("night action on non-living %s", a.Target)
		}
		actors[a.Actor] = true
	}
	return nil
}
