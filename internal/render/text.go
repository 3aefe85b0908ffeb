package render

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aaronzipp/wolfden/internal/models"
)

// Remaining formats how long until deadline, relative to now
func Remaining(deadline, now time.Time) string {
	return humanize.RelTime(now, deadline, "left", "overdue")
}

// SignupList generates the roster display for a channel; prefix is the
// command prefix used in the join hint
func SignupList(entries []models.SignupEntry, minPlayers int, prefix string, now time.Time) string {
	var b strings.Builder
	b.WriteString("Signed up (")
	b.WriteString(strconv.Itoa(len(entries)))
	b.WriteString("/")
	b.WriteString(strconv.Itoa(minPlayers))
	b.WriteString(" needed)")
	if len(entries) == 0 {
		b.WriteString(": nobody yet. Type " + prefix + "in to join.")
		return b.String()
	}
	b.WriteString(":")
	for i, e := range entries {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(e.Player.Name)
		b.WriteString(" (")
		b.WriteString(Remaining(e.Deadline, now))
		b.WriteString(")")
	}
	return b.String()
}

// PlayerList generates a numbered list of the given players in seating order
func PlayerList(players []*models.Player) string {
	var b strings.Builder
	for i, p := range players {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(p.Name)
	}
	return b.String()
}

// Status generates the status line for a running game
func Status(phase models.Phase, cycle int, deadline time.Time, living []*models.Player, now time.Time) string {
	var b strings.Builder
	b.WriteString(PhaseName(phase, cycle))
	if phase != models.PhaseFinished {
		b.WriteString(", ")
		b.WriteString(Remaining(deadline, now))
	}
	b.WriteString(".\nAlive (")
	b.WriteString(strconv.Itoa(len(living)))
	b.WriteString("):\n")
	b.WriteString(PlayerList(living))
	return b.String()
}

// PhaseName generates the human name of a phase, e.g. "Day 2 voting"
func PhaseName(phase models.Phase, cycle int) string {
	n := strconv.Itoa(cycle)
	switch phase {
	case models.PhaseDayDiscussion:
		return "Day " + n + " discussion"
	case models.PhaseDayVote:
		return "Day " + n + " voting"
	case models.PhaseNight:
		return "Night " + n
	case models.PhaseFinished:
		return "Game over"
	default:
		return "Signups"
	}
}

// VoteCount generates the tally display; names maps player IDs to names
func VoteCount(counts map[string]int, names map[string]string, voted, total int) string {
	type row struct {
		name  string
		count int
	}
	rows := make([]row, 0, len(counts))
	for target, c := range counts {
		name := "nobody"
		if target != models.Abstain {
			name = names[target]
		}
		rows = append(rows, row{name: name, count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count == rows[j].count {
			return strings.ToLower(rows[i].name) < strings.ToLower(rows[j].name)
		}
		return rows[i].count > rows[j].count
	})

	var b strings.Builder
	b.WriteString(strconv.Itoa(voted))
	b.WriteString("/")
	b.WriteString(strconv.Itoa(total))
	b.WriteString(" players have voted")
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(r.name)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(r.count))
	}
	return b.String()
}

// RoleCard generates the private role message for a player
func RoleCard(p *models.Player, teammates []string, prefix string) string {
	var b strings.Builder
	b.WriteString("You are a ")
	b.WriteString(string(p.Role))
	b.WriteString(" (")
	b.WriteString(string(p.Faction()))
	b.WriteString(").")
	switch p.Role {
	case models.RoleWolf:
		b.WriteString(" Each night, pick a victim with " + prefix + "kill <player>.")
		if len(teammates) > 0 {
			b.WriteString(" Your pack: ")
			b.WriteString(strings.Join(teammates, ", "))
			b.WriteString(".")
		}
	case models.RoleSeer:
		b.WriteString(" Each night, learn a player's faction with " + prefix + "check <player>.")
	case models.RoleGuardian:
		b.WriteString(" Each night, shield another player with " + prefix + "protect <player>.")
	default:
		b.WriteString(" Find the wolves and vote them out.")
	}
	if p.HasItem(models.ItemGun) {
		b.WriteString(" You carry a gun: " + prefix + "shoot <player> during the day, or " + prefix + "pass <player> to hand it over.")
	}
	return b.String()
}

// Items generates the inventory display for a player
func Items(items []models.Item) string {
	if len(items) == 0 {
		return "You carry nothing."
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = string(it)
	}
	return "You carry: " + strings.Join(names, ", ") + "."
}

// Results generates the end-of-game summary
func Results(winner models.Faction, aborted bool, players []*models.Player) string {
	var b strings.Builder
	switch {
	case aborted:
		b.WriteString("The game was aborted.")
	case winner != "":
		b.WriteString("Game over: the ")
		b.WriteString(string(winner))
		b.WriteString(" win!")
	default:
		b.WriteString("Game over: nobody wins.")
	}
	list := append([]*models.Player(nil), players...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Faction() < list[j].Faction() })
	for _, p := range list {
		b.WriteString("\n")
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(string(p.Role))
		if !p.Alive {
			b.WriteString(" (dead)")
		}
	}
	return b.String()
}
