package game

import (
	"time"

	"github.com/aaronzipp/wolfden/internal/models"
)

const (
	// MinPlayers is the minimum roster size of the classic variant
	MinPlayers = 5

	// DefaultDiscussion is how long the day discussion lasts before voting opens
	DefaultDiscussion = 3 * time.Minute

	// DefaultVote is how long voting stays open
	DefaultVote = 2 * time.Minute

	// DefaultNight is how long night actors have to act
	DefaultNight = time.Minute

	// DefaultPrefix starts every chat command unless configured otherwise
	DefaultPrefix = "!"

	// SnapshotVersion is bumped whenever the snapshot layout changes
	SnapshotVersion = 1

	// WolfRatio is how many players there are per wolf
	WolfRatio = 4

	// GuardianMinPlayers is the roster size from which a guardian is dealt
	GuardianMinPlayers = 6
)

// Variants lists the playable rulesets by name
var Variants = map[string]models.Variant{
	"classic": {Name: "classic", MinPlayers: MinPlayers, WinRule: models.WinElimination, Gun: true},
	"mafia":   {Name: "mafia", MinPlayers: 3, WinRule: models.WinParity},
}

// LookupVariant returns the named variant
func LookupVariant(name string) (models.Variant, bool) {
	v, ok := Variants[name]
	return v, ok
}

// Timings holds the phase lengths of a session
type Timings struct {
	Discussion time.Duration `json:"discussion"`
	Vote       time.Duration `json:"vote"`
	Night      time.Duration `json:"night"`
}

// DefaultTimings returns the default phase lengths
func DefaultTimings() Timings {
	return Timings{Discussion: DefaultDiscussion, Vote: DefaultVote, Night: DefaultNight}
}

func (t Timings) valid() bool {
	return t.Discussion > 0 && t.Vote > 0 && t.Night > 0
}
