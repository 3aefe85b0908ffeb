package models

import "time"

// Abstain is the vote target for a player who votes for nobody
const Abstain = ""

// Vote is a day vote cast by a living player
type Vote struct {
	Voter  string    `json:"voter"`
	Target string    `json:"target"` // Abstain for no elimination
	At     time.Time `json:"at"`
}

// NightAction is a role action submitted during the night
type NightAction struct {
	Actor  string     `json:"actor"`
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target"`
	At     time.Time  `json:"at"`
}

// Cause explains why a player left the game
type Cause string

const (
	CauseLynched Cause = "lynched"
	CauseKilled  Cause = "killed"
	CauseShot    Cause = "shot"
	CauseRemoved Cause = "removed" // forced removal, no faction is credited
)

// Elimination is an entry of the elimination log
type Elimination struct {
	Player string    `json:"player"`
	Cause  Cause     `json:"cause"`
	Cycle  int       `json:"cycle"`
	Phase  Phase     `json:"phase"`
	At     time.Time `json:"at"`
}
