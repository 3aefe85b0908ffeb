package models

// Phase represents the current state of a game session
type Phase string

const (
	PhaseDayDiscussion Phase = "DAY_DISCUSSION"
	PhaseDayVote       Phase = "DAY_VOTE"
	PhaseNight         Phase = "NIGHT"
	PhaseFinished      Phase = "FINISHED"
)

// IsDay reports whether the phase is one of the day phases
func (p Phase) IsDay() bool {
	return p == PhaseDayDiscussion || p == PhaseDayVote
}

// Valid reports whether p is a known in-game phase
func (p Phase) Valid() bool {
	switch p {
	case PhaseDayDiscussion, PhaseDayVote, PhaseNight, PhaseFinished:
		return true
	}
	return false
}
