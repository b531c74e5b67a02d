// shared/volleyball/stats.go
package volleyball

import "math"

// SetScore is the final (or running) score of one set, home perspective first.
// Completed sets are kept as one ordered sequence of these records, so there
// is no pair of parallel arrays to keep index-synchronized.
type SetScore struct {
	Home int `bson:"home" json:"home"`
	Away int `bson:"away" json:"away"`
}

// SetsWon counts, over the completed sets, how many each side took.
func SetsWon(sets []SetScore) (home, away int) {
	for _, s := range sets {
		if s.Home > s.Away {
			home++
		} else if s.Away > s.Home {
			away++
		}
	}
	return home, away
}

// MatchOutcome is the match-level result from the scouted team's perspective.
type MatchOutcome int

const (
	OutcomeTie MatchOutcome = iota
	OutcomeWin
	OutcomeLoss
)

// Outcome decides a finished match by comparing sets won on each side. Equal
// set counts are reported as OutcomeTie rather than silently folded into
// either column; volleyball essentially never ties, but a short or abandoned
// scout log can.
func Outcome(sets []SetScore) MatchOutcome {
	home, away := SetsWon(sets)
	switch {
	case home > away:
		return OutcomeWin
	case away > home:
		return OutcomeLoss
	}
	return OutcomeTie
}

// WinLossRecord accumulates match outcomes for a team or user-wide scope.
type WinLossRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Add folds one finished match into the record.
func (r *WinLossRecord) Add(sets []SetScore) {
	switch Outcome(sets) {
	case OutcomeWin:
		r.Wins++
	case OutcomeLoss:
		r.Losses++
	default:
		r.Ties++
	}
}

// WinRate is the percentage of decided matches won, rounded to the nearest
// integer. Ties are not decided matches and stay out of the denominator.
// Returns 0 when nothing has been decided yet.
func (r WinLossRecord) WinRate() int {
	decided := r.Wins + r.Losses
	if decided == 0 {
		return 0
	}
	return int(math.Round(float64(r.Wins) * 100 / float64(decided)))
}

// EfficiencyScore is the 0-100 weighted average over a group of counted
// results: round(sum(weight * count) / total). Returns 0 for an empty group.
func EfficiencyScore(results map[ActionResult]int) int {
	total := 0
	weightedSum := 0
	for result, count := range results {
		total += count
		weightedSum += Weight(result) * count
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(weightedSum) / float64(total)))
}
