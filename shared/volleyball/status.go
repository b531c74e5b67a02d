// shared/volleyball/status.go
package volleyball

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusLive      MatchStatus = "LIVE"
	StatusFinished  MatchStatus = "FINISHED"
	StatusCanceled  MatchStatus = "CANCELED"
)

// ValidStatus reports whether s is one of the known match statuses.
func ValidStatus(s MatchStatus) bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusCanceled:
		return true
	}
	return false
}

// transitions is the explicit state machine for match lifecycle. FINISHED and
// CANCELED are terminal; CANCELED is reachable from every non-terminal state
// so an operator can abandon a match that never went live.
var transitions = map[MatchStatus][]MatchStatus{
	StatusScheduled: {StatusLive, StatusCanceled},
	StatusLive:      {StatusFinished, StatusCanceled},
	StatusFinished:  {},
	StatusCanceled:  {},
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(s MatchStatus) bool {
	return len(transitions[s]) == 0
}
