// shared/volleyball/rules.go
package volleyball

// validResults constrains which outcomes each action type can carry.
// A serve can do anything; receptions, digs and sets never terminate a rally
// in the scouted team's favor, so they never carry POINT; an attack is either
// dealt with or not, so NEUTRAL is meaningless for it; a block touch that
// slows the ball down is NEUTRAL rather than NEGATIVE.
var validResults = map[ActionType][]ActionResult{
	ActionServe:   {ResultError, ResultNegative, ResultNeutral, ResultPositive, ResultPoint},
	ActionReceive: {ResultError, ResultNegative, ResultNeutral, ResultPositive},
	ActionAttack:  {ResultError, ResultNegative, ResultPositive, ResultPoint},
	ActionBlock:   {ResultError, ResultNeutral, ResultPositive, ResultPoint},
	ActionDig:     {ResultError, ResultNegative, ResultNeutral, ResultPositive},
	ActionSet:     {ResultError, ResultNegative, ResultNeutral, ResultPositive},
}

// ValidCombination reports whether an action of type t may carry result r.
func ValidCombination(t ActionType, r ActionResult) bool {
	for _, allowed := range validResults[t] {
		if allowed == r {
			return true
		}
	}
	return false
}

// ValidResultsFor returns the allowed results for an action type, in display
// order. Returns nil for an unknown type.
func ValidResultsFor(t ActionType) []ActionResult {
	allowed, ok := validResults[t]
	if !ok {
		return nil
	}
	out := make([]ActionResult, len(allowed))
	copy(out, allowed)
	return out
}

// PointDelta is the score effect a single recorded action has on the current
// set, as (home, away) increments.
//
// A POINT by the scouted team is a home point. An ERROR by the scouted team
// hands the rally to the opponent, so it is an away point. Every entry flagged
// isOpponentPoint describes the opponent's own touch from the opponent's
// perspective and is recorded for analytics only; it never moves the scouted
// scoreboard. Undo applies the inverse of this same table, which is what makes
// it an exact reversal.
func PointDelta(r ActionResult, isOpponentPoint bool) (home, away int) {
	if isOpponentPoint {
		return 0, 0
	}
	switch r {
	case ResultPoint:
		return 1, 0
	case ResultError:
		return 0, 1
	}
	return 0, 0
}

// resultWeights maps each outcome to its fixed efficiency weight.
var resultWeights = map[ActionResult]int{
	ResultError:    0,
	ResultNegative: 25,
	ResultNeutral:  50,
	ResultPositive: 75,
	ResultPoint:    100,
}

// Weight returns the efficiency weight of a result. Unknown results weigh in
// as NEUTRAL, mirroring how unrecognized rows were averaged before.
func Weight(r ActionResult) int {
	w, ok := resultWeights[r]
	if !ok {
		return resultWeights[ResultNeutral]
	}
	return w
}
