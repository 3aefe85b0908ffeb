package models

// WinRule decides when a faction has won
type WinRule string

const (
	// WinElimination: a faction wins once the other one has no living members
	WinElimination WinRule = "elimination"
	// WinParity: wolves also win once they are at least as many as the village
	WinParity WinRule = "parity"
)

// Variant represents a game ruleset
type Variant struct {
	Name       string  `json:"name"`
	MinPlayers int     `json:"min_players"`
	WinRule    WinRule `json:"win_rule"`
	Gun        bool    `json:"gun"` // deal a gun to one villager at start
}
