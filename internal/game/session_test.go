package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
)

var t0 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func roster(ids ...string) []models.Identity {
	out := make([]models.Identity, len(ids))
	for i, id := range ids {
		out[i] = models.Identity{ID: id, Name: strings.ToUpper(id)}
	}
	return out
}

// newClassic seats u1..u5: u1 wolf, u2 seer, u3 villager with the gun,
// u4 and u5 villagers.
func newClassic(t *testing.T) *Session {
	t.Helper()
	assign := Assignment{
		Roles: map[string]models.Role{
			"u1": models.RoleWolf,
			"u2": models.RoleSeer,
			"u3": models.RoleVillager,
			"u4": models.RoleVillager,
			"u5": models.RoleVillager,
		},
		GunHolder: "u3",
	}
	s, err := Start("s1", "c1", Variants["classic"], DefaultTimings(), "", roster("u1", "u2", "u3", "u4", "u5"), assign, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func openVote(t *testing.T, s *Session) time.Time {
	t.Helper()
	now := s.Deadline()
	if !s.Advance(now) {
		t.Fatal("expected discussion to advance")
	}
	if s.Phase() != models.PhaseDayVote {
		t.Fatalf("phase = %s, want DAY_VOTE", s.Phase())
	}
	return now
}

func mustVote(t *testing.T, s *Session, now time.Time, pairs ...string) {
	t.Helper()
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := s.Vote(pairs[i], pairs[i+1], now); err != nil {
			t.Fatalf("vote %s -> %s: %v", pairs[i], pairs[i+1], err)
		}
	}
}

func encoded(t *testing.T, s *Session) string {
	t.Helper()
	b, err := Encode(s.Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(b)
}

func TestStartDealsRolesAndOpensDayOne(t *testing.T) {
	s := newClassic(t)
	if s.Phase() != models.PhaseDayDiscussion || s.Cycle() != 1 {
		t.Fatalf("phase = %s cycle = %d", s.Phase(), s.Cycle())
	}
	if !s.Deadline().Equal(t0.Add(DefaultDiscussion)) {
		t.Fatalf("deadline = %v", s.Deadline())
	}
	notices := s.Drain()
	direct := 0
	for _, n := range notices {
		if n.Direct() {
			direct++
		}
	}
	if direct != 5 {
		t.Fatalf("expected 5 role messages, got %d", direct)
	}
	if len(s.Drain()) != 0 {
		t.Fatal("expected Drain to clear notices")
	}
}

func TestStartRejectsShortRoster(t *testing.T) {
	_, err := Start("s1", "c1", Variants["classic"], DefaultTimings(), "", roster("u1", "u2"), Assignment{}, t0)
	if !errors.Is(err, apperr.New(apperr.CodeInsufficientPlayers, "")) {
		t.Fatalf("expected INSUFFICIENT_PLAYERS, got %v", err)
	}
}

func TestUnanimousVoteEliminatesAndEntersNight(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)

	mustVote(t, s, now, "u1", "u4", "u2", "u4", "u3", "u4", "u4", "u5", "u5", "u4")

	p, _ := s.Player("u4")
	if p.Alive {
		t.Fatal("expected u4 to be lynched")
	}
	if s.Phase() != models.PhaseNight {
		t.Fatalf("phase = %s, want NIGHT", s.Phase())
	}
	log := s.Eliminations()
	if len(log) != 1 || log[0].Cause != models.CauseLynched || log[0].Player != "u4" {
		t.Fatalf("eliminations = %+v", log)
	}
}

func TestTwoTwoTieEliminatesNobody(t *testing.T) {
	assign := Assignment{Roles: map[string]models.Role{
		"u1": models.RoleWolf, "u2": models.RoleSeer, "u3": models.RoleVillager, "u4": models.RoleVillager,
	}}
	s, err := Start("s1", "c1", Variants["mafia"], DefaultTimings(), "", roster("u1", "u2", "u3", "u4"), assign, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	now := openVote(t, s)

	mustVote(t, s, now, "u1", "u3", "u2", "u3", "u3", "u4", "u4", "u4")

	if len(s.Living()) != 4 {
		t.Fatalf("expected nobody eliminated, living = %d", len(s.Living()))
	}
	if len(s.Eliminations()) != 0 {
		t.Fatalf("eliminations = %+v", s.Eliminations())
	}
	if s.Phase() != models.PhaseNight {
		t.Fatalf("phase = %s, want NIGHT", s.Phase())
	}
}

func TestVoteDeadlineResolvesPartialVotes(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u2", "u5", "u3", "u5")

	if s.Advance(now.Add(time.Second)) {
		t.Fatal("vote should stay open before its deadline")
	}
	if !s.Advance(s.Deadline()) {
		t.Fatal("expected vote to close at deadline")
	}
	if s.IsAlive("u5") {
		t.Fatal("expected u5 lynched")
	}
	if s.Phase() != models.PhaseNight {
		t.Fatalf("phase = %s", s.Phase())
	}
}

func TestUnvoteAllowsChangingVote(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u2", "u5")
	if err := s.Unvote("u2", now); err != nil {
		t.Fatalf("unvote: %v", err)
	}
	mustVote(t, s, now, "u2", "u1")
	counts, voted, total := s.VoteTally()
	if counts["u1"] != 1 || counts["u5"] != 0 || voted != 1 || total != 5 {
		t.Fatalf("tally = %v %d/%d", counts, voted, total)
	}
}

func TestRejectedCommandsLeaveStateUnchanged(t *testing.T) {
	s := newClassic(t)

	attempts := []struct {
		name string
		do   func(now time.Time) error
	}{
		{name: "vote during discussion", do: func(now time.Time) error { return s.Vote("u1", "u2", now) }},
		{name: "night action by day", do: func(now time.Time) error { return s.Act("u1", "u2", now) }},
		{name: "stranger votes", do: func(now time.Time) error { return s.Vote("nobody", "u2", now) }},
		{name: "shoot without gun", do: func(now time.Time) error { return s.Shoot("u4", "u1", now) }},
		{name: "pass gun to self", do: func(now time.Time) error { return s.PassItem("u3", "u3", models.ItemGun, now) }},
	}
	for _, a := range attempts {
		before := encoded(t, s)
		err := a.do(t0)
		if apperr.CodeOf(err) != apperr.CodeIllegalGameState {
			t.Fatalf("%s: expected ILLEGAL_GAME_STATE, got %v", a.name, err)
		}
		if after := encoded(t, s); after != before {
			t.Fatalf("%s: state changed", a.name)
		}
	}

	now := openVote(t, s)
	mustVote(t, s, now, "u2", "u5")
	before := encoded(t, s)
	if err := s.Vote("u2", "u4", now); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
		t.Fatalf("double vote: got %v", err)
	}
	if err := s.Vote("u3", "ghost", now); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
		t.Fatalf("vote for stranger: got %v", err)
	}
	if after := encoded(t, s); after != before {
		t.Fatal("double vote changed state")
	}
}

func TestDeadPlayersCannotVote(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u1", "u4", "u2", "u4", "u3", "u4", "u4", "u4", "u5", "u4")

	// night 1: wolf kills u5, seer checks u1
	if err := s.Act("u1", "u5", now); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := s.Act("u2", "u1", now); err != nil {
		t.Fatalf("check: %v", err)
	}
	if s.Phase() != models.PhaseDayDiscussion || s.Cycle() != 2 {
		t.Fatalf("phase = %s cycle = %d", s.Phase(), s.Cycle())
	}
	now = openVote(t, s)
	before := encoded(t, s)
	if err := s.Vote("u4", "u1", now); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
		t.Fatalf("expected dead vote to be rejected, got %v", err)
	}
	if encoded(t, s) != before {
		t.Fatal("dead vote changed state")
	}
}

func TestSeerLearnsFactionAtDawn(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u1", "u4", "u2", "u4", "u3", "u4", "u4", "u4", "u5", "u4")
	s.Drain()

	if err := s.Act("u2", "u1", now); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := s.Act("u1", "u3", now); err != nil {
		t.Fatalf("kill: %v", err)
	}
	var vision string
	for _, n := range s.Drain() {
		if n.User == "u2" && strings.Contains(n.Text, "vision") {
			vision = n.Text
		}
	}
	if !strings.Contains(vision, "wolves") {
		t.Fatalf("seer result = %q", vision)
	}
	if s.IsAlive("u3") {
		t.Fatal("expected u3 killed")
	}
}

// newSix seats u1..u6: u1 wolf, u2 seer, u3 guardian, rest villagers.
func newSix(t *testing.T) (*Session, time.Time) {
	t.Helper()
	assign := Assignment{Roles: map[string]models.Role{
		"u1": models.RoleWolf, "u2": models.RoleSeer, "u3": models.RoleGuardian,
		"u4": models.RoleVillager, "u5": models.RoleVillager, "u6": models.RoleVillager,
	}}
	s, err := Start("s6", "c6", Variants["classic"], DefaultTimings(), "", roster("u1", "u2", "u3", "u4", "u5", "u6"), assign, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	openVote(t, s)
	// nobody lynched; the day ends at the deadline with no votes
	if !s.Advance(s.Deadline()) {
		t.Fatal("expected vote deadline")
	}
	if s.Phase() != models.PhaseNight {
		t.Fatalf("phase = %s", s.Phase())
	}
	return s, s.Deadline().Add(-time.Second)
}

func TestProtectionResolvesBeforeKill(t *testing.T) {
	s, now := newSix(t)
	if err := s.Act("u1", "u4", now); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := s.Act("u2", "u5", now); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := s.Act("u3", "u4", now); err != nil {
		t.Fatalf("protect: %v", err)
	}
	if !s.IsAlive("u4") {
		t.Fatal("protected player died")
	}
	if s.Phase() != models.PhaseDayDiscussion || s.Cycle() != 2 {
		t.Fatalf("phase = %s cycle = %d", s.Phase(), s.Cycle())
	}
}

func TestKilledSeerGetsNoVision(t *testing.T) {
	s, now := newSix(t)
	s.Drain()
	if err := s.Act("u2", "u1", now); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := s.Act("u1", "u2", now); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := s.Act("u3", "u4", now); err != nil {
		t.Fatalf("protect: %v", err)
	}
	if s.IsAlive("u2") {
		t.Fatal("expected seer killed")
	}
	for _, n := range s.Drain() {
		if n.User == "u2" && strings.Contains(n.Text, "vision") {
			t.Fatalf("dead seer got a result: %q", n.Text)
		}
	}
}

func TestNightValidation(t *testing.T) {
	s, now := newSix(t)
	tests := []struct {
		name          string
		actor, target string
	}{
		{name: "villager has no action", actor: "u4", target: "u1"},
		{name: "seer checks self", actor: "u2", target: "u2"},
		{name: "guardian protects self", actor: "u3", target: "u3"},
		{name: "unknown target", actor: "u1", target: "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := encoded(t, s)
			if err := s.Act(tt.actor, tt.target, now); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
				t.Fatalf("expected ILLEGAL_GAME_STATE, got %v", err)
			}
			if encoded(t, s) != before {
				t.Fatal("state changed")
			}
		})
	}
	if err := s.Act("u1", "u4", now); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := s.Act("u1", "u5", now); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
		t.Fatalf("double act: got %v", err)
	}
}

func TestLynchingLastWolfEndsGame(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u1", "u2", "u2", "u1", "u3", "u1", "u4", "u1", "u5", "u1")
	if !s.Finished() || s.Winner() != models.FactionVillage {
		t.Fatalf("phase = %s winner = %q", s.Phase(), s.Winner())
	}
	if s.Advance(now.Add(time.Hour)) {
		t.Fatal("finished session should not advance")
	}
}

func TestWolvesWinWhenVillageIsGone(t *testing.T) {
	assign := Assignment{Roles: map[string]models.Role{
		"u1": models.RoleWolf, "u2": models.RoleSeer, "u3": models.RoleVillager,
	}}
	s, err := Start("s1", "c1", Variants["mafia"], DefaultTimings(), "", roster("u1", "u2", "u3"), assign, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	now := openVote(t, s)
	mustVote(t, s, now, "u1", "u3", "u2", "u3", "u3", "u1")
	if !s.Finished() || s.Winner() != models.FactionWolves {
		t.Fatalf("phase = %s winner = %q", s.Phase(), s.Winner())
	}
}

func TestForceRemoveMidNightResolvesWithoutThem(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u1", "u4", "u2", "u4", "u3", "u4", "u4", "u4", "u5", "u4")

	if err := s.Act("u1", "u3", now); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if !s.OwesAction("u2") {
		t.Fatal("seer should owe a night action")
	}
	if err := s.ForceRemove("u2", "inactive", now); err != nil {
		t.Fatalf("force remove: %v", err)
	}

	if s.Phase() != models.PhaseDayDiscussion || s.Cycle() != 2 {
		t.Fatalf("phase = %s cycle = %d", s.Phase(), s.Cycle())
	}
	causes := map[string]models.Cause{}
	for _, e := range s.Eliminations() {
		causes[e.Player] = e.Cause
	}
	if causes["u2"] != models.CauseRemoved {
		t.Fatalf("u2 cause = %q", causes["u2"])
	}
	if causes["u3"] != models.CauseKilled {
		t.Fatalf("u3 cause = %q", causes["u3"])
	}
}

func TestForceRemovePassesGunToSuccessor(t *testing.T) {
	s := newClassic(t)
	if err := s.ForceRemove("u3", "inactive", t0); err != nil {
		t.Fatalf("force remove: %v", err)
	}
	heir, _ := s.Player("u4")
	if !heir.HasItem(models.ItemGun) {
		t.Fatal("expected u4 to inherit the gun")
	}
	if err := s.Check(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestSuccessorWrapsAndSkipsDead(t *testing.T) {
	s := newClassic(t)
	if got := s.Successor("u5"); got == nil || got.ID != "u1" {
		t.Fatalf("successor of u5 = %v", got)
	}
	p, _ := s.Player("u4")
	p.Alive = false
	if got := s.Successor("u3"); got == nil || got.ID != "u5" {
		t.Fatalf("successor of u3 = %v", got)
	}
	if got := s.Successor("ghost"); got != nil {
		t.Fatalf("successor of unknown = %v", got)
	}
}

func TestForceRemoveLastWolfHandsVillageTheWin(t *testing.T) {
	s := newClassic(t)
	if err := s.ForceRemove("u1", "inactive", t0); err != nil {
		t.Fatalf("force remove: %v", err)
	}
	if !s.Finished() || s.Winner() != models.FactionVillage {
		t.Fatalf("phase = %s winner = %q", s.Phase(), s.Winner())
	}
	if err := s.ForceRemove("u2", "inactive", t0); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
		t.Fatalf("remove after finish: got %v", err)
	}
}

func TestTooManyRemovalsAbort(t *testing.T) {
	s := newClassic(t)
	for _, id := range []string{"u3", "u4", "u5"} {
		if err := s.ForceRemove(id, "inactive", t0); err != nil {
			t.Fatalf("remove %s: %v", id, err)
		}
	}
	if !s.Finished() || !s.Aborted() || s.Winner() != "" {
		t.Fatalf("phase = %s aborted = %v winner = %q", s.Phase(), s.Aborted(), s.Winner())
	}
}

func TestForceRemoveCompletesVote(t *testing.T) {
	s := newClassic(t)
	now := openVote(t, s)
	mustVote(t, s, now, "u1", "u4", "u2", "u4", "u3", "u4", "u4", "u1")
	if err := s.ForceRemove("u5", "inactive", now); err != nil {
		t.Fatalf("force remove: %v", err)
	}
	if s.IsAlive("u4") || s.Phase() != models.PhaseNight {
		t.Fatalf("expected u4 lynched and night, phase = %s", s.Phase())
	}
}

func TestShootUsesUpGun(t *testing.T) {
	s := newClassic(t)
	if err := s.Shoot("u3", "u5", t0); err != nil {
		t.Fatalf("shoot: %v", err)
	}
	shooter, _ := s.Player("u3")
	if shooter.HasItem(models.ItemGun) {
		t.Fatal("gun should be used up")
	}
	if s.IsAlive("u5") {
		t.Fatal("expected u5 shot")
	}
	if err := s.Shoot("u3", "u4", t0); apperr.CodeOf(err) != apperr.CodeIllegalGameState {
		t.Fatalf("second shot: got %v", err)
	}
}

func TestPassItemMovesGun(t *testing.T) {
	s := newClassic(t)
	if err := s.PassItem("u3", "u5", models.ItemGun, t0); err != nil {
		t.Fatalf("pass: %v", err)
	}
	from, _ := s.Player("u3")
	to, _ := s.Player("u5")
	if from.HasItem(models.ItemGun) || !to.HasItem(models.ItemGun) {
		t.Fatalf("items: from=%v to=%v", from.Items, to.Items)
	}
}

func TestIdentify(t *testing.T) {
	s := newClassic(t)
	tests := []struct {
		query string
		want  string
	}{
		{query: "u2", want: "u2"},
		{query: "U4", want: "u4"},
		{query: "@u5", want: "u5"},
		{query: "1", want: "u1"},
	}
	for _, tt := range tests {
		p, err := s.Identify(tt.query)
		if err != nil {
			t.Fatalf("Identify(%q): %v", tt.query, err)
		}
		if p.ID != tt.want {
			t.Fatalf("Identify(%q) = %s, want %s", tt.query, p.ID, tt.want)
		}
	}
	if _, err := s.Identify("9"); err == nil {
		t.Fatal("expected error for out of range number")
	}
	if _, err := s.Identify("zed"); err == nil {
		t.Fatal("expected error for unknown name")
	}
}
