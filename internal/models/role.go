package models

// Faction is a team whose survival decides the game
type Faction string

const (
	FactionVillage Faction = "village"
	FactionWolves  Faction = "wolves"
)

// Role represents the hidden card dealt to a player
type Role string

const (
	RoleVillager Role = "villager"
	RoleWolf     Role = "wolf"
	RoleSeer     Role = "seer"
	RoleGuardian Role = "guardian"
)

// ActionKind is the kind of night action a role performs
type ActionKind string

const (
	ActionProtect ActionKind = "protect"
	ActionKill    ActionKind = "kill"
	ActionInspect ActionKind = "inspect"
)

// Faction returns the team the role plays for
func (r Role) Faction() Faction {
	if r == RoleWolf {
		return FactionWolves
	}
	return FactionVillage
}

// NightAction returns the action the role takes at night, or "" for none
func (r Role) NightAction() ActionKind {
	switch r {
	case RoleWolf:
		return ActionKill
	case RoleSeer:
		return ActionInspect
	case RoleGuardian:
		return ActionProtect
	default:
		return ""
	}
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleVillager, RoleWolf, RoleSeer, RoleGuardian:
		return true
	}
	return false
}

// Priority orders night resolution: protective, then offensive, then informational
func (k ActionKind) Priority() int {
	switch k {
	case ActionProtect:
		return 0
	case ActionKill:
		return 1
	case ActionInspect:
		return 2
	default:
		return 3
	}
}
