package volleyball

import "testing"

func TestValidCombination(t *testing.T) {
	tests := []struct {
		name   string
		typ    ActionType
		result ActionResult
		want   bool
	}{
		{"serve allows point", ActionServe, ResultPoint, true},
		{"serve allows error", ActionServe, ResultError, true},
		{"serve allows neutral", ActionServe, ResultNeutral, true},
		{"attack never neutral", ActionAttack, ResultNeutral, false},
		{"attack allows point", ActionAttack, ResultPoint, true},
		{"block never negative", ActionBlock, ResultNegative, false},
		{"block allows point", ActionBlock, ResultPoint, true},
		{"receive never point", ActionReceive, ResultPoint, false},
		{"receive allows positive", ActionReceive, ResultPositive, true},
		{"dig never point", ActionDig, ResultPoint, false},
		{"set never point", ActionSet, ResultPoint, false},
		{"set allows error", ActionSet, ResultError, true},
		{"unknown type rejects everything", ActionType("SPIKE"), ResultPoint, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCombination(tt.typ, tt.result); got != tt.want {
				t.Errorf("ValidCombination(%s, %s) = %v, want %v", tt.typ, tt.result, got, tt.want)
			}
		})
	}
}

func TestPointDelta(t *testing.T) {
	tests := []struct {
		name     string
		result   ActionResult
		opponent bool
		home     int
		away     int
	}{
		{"own point scores home", ResultPoint, false, 1, 0},
		{"own error scores away", ResultError, false, 0, 1},
		{"negative has no effect", ResultNegative, false, 0, 0},
		{"neutral has no effect", ResultNeutral, false, 0, 0},
		{"positive has no effect", ResultPositive, false, 0, 0},
		{"opponent point not mirrored", ResultPoint, true, 0, 0},
		{"opponent error not mirrored", ResultError, true, 0, 0},
		{"opponent neutral has no effect", ResultNeutral, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, away := PointDelta(tt.result, tt.opponent)
			if home != tt.home || away != tt.away {
				t.Errorf("PointDelta(%s, %v) = (%d, %d), want (%d, %d)",
					tt.result, tt.opponent, home, away, tt.home, tt.away)
			}
		})
	}
}

func TestPointDeltaCoversEveryResultOfEveryType(t *testing.T) {
	// Whatever the combination, the delta must be one point at most, on one
	// side at most. Undo depends on being able to invert any recorded entry.
	for typ, results := range validResults {
		for _, result := range results {
			for _, opp := range []bool{false, true} {
				home, away := PointDelta(result, opp)
				if home < 0 || away < 0 || home+away > 1 {
					t.Errorf("PointDelta(%s/%s, %v) = (%d, %d): not a single-point delta",
						typ, result, opp, home, away)
				}
			}
		}
	}
}

func TestWeight(t *testing.T) {
	if Weight(ResultError) != 0 || Weight(ResultNegative) != 25 ||
		Weight(ResultNeutral) != 50 || Weight(ResultPositive) != 75 ||
		Weight(ResultPoint) != 100 {
		t.Fatal("result weights deviate from the fixed 0/25/50/75/100 mapping")
	}
	if got := Weight(ActionResult("UNKNOWN")); got != 50 {
		t.Errorf("unknown result weight = %d, want 50 (neutral)", got)
	}
}
