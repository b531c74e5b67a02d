package volleyball

import "testing"

func TestEfficiencyScore(t *testing.T) {
	tests := []struct {
		name    string
		results map[ActionResult]int
		want    int
	}{
		{
			name:    "error plus two points rounds to 67",
			results: map[ActionResult]int{ResultError: 1, ResultPoint: 2},
			want:    67, // round((0+100+100)/3)
		},
		{
			name:    "all neutral is 50",
			results: map[ActionResult]int{ResultNeutral: 4},
			want:    50,
		},
		{
			name:    "empty group is 0",
			results: map[ActionResult]int{},
			want:    0,
		},
		{
			name:    "all errors is 0",
			results: map[ActionResult]int{ResultError: 7},
			want:    0,
		},
		{
			name:    "mixed bag",
			results: map[ActionResult]int{ResultNegative: 1, ResultPositive: 1},
			want:    50, // round((25+75)/2)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EfficiencyScore(tt.results); got != tt.want {
				t.Errorf("EfficiencyScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetsWonAndOutcome(t *testing.T) {
	tests := []struct {
		name     string
		sets     []SetScore
		wantHome int
		wantAway int
		outcome  MatchOutcome
	}{
		{
			name:     "home wins two of three",
			sets:     []SetScore{{25, 20}, {20, 25}, {25, 15}},
			wantHome: 2, wantAway: 1,
			outcome: OutcomeWin,
		},
		{
			name:     "straight loss",
			sets:     []SetScore{{20, 25}, {23, 25}, {18, 25}},
			wantHome: 0, wantAway: 3,
			outcome: OutcomeLoss,
		},
		{
			name:     "set tie contributes to neither side",
			sets:     []SetScore{{10, 10}, {25, 20}},
			wantHome: 1, wantAway: 0,
			outcome: OutcomeWin,
		},
		{
			name:     "one set each is a match tie",
			sets:     []SetScore{{25, 20}, {20, 25}},
			wantHome: 1, wantAway: 1,
			outcome: OutcomeTie,
		},
		{
			name:     "no sets is a match tie",
			sets:     nil,
			wantHome: 0, wantAway: 0,
			outcome: OutcomeTie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, away := SetsWon(tt.sets)
			if home != tt.wantHome || away != tt.wantAway {
				t.Errorf("SetsWon() = (%d, %d), want (%d, %d)", home, away, tt.wantHome, tt.wantAway)
			}
			if got := Outcome(tt.sets); got != tt.outcome {
				t.Errorf("Outcome() = %v, want %v", got, tt.outcome)
			}
		})
	}
}

func TestWinLossRecord(t *testing.T) {
	var rec WinLossRecord
	rec.Add([]SetScore{{25, 20}, {25, 18}})           // win
	rec.Add([]SetScore{{20, 25}, {25, 20}, {10, 25}}) // loss
	rec.Add([]SetScore{{25, 20}, {20, 25}})           // tie
	rec.Add([]SetScore{{25, 23}, {25, 21}})           // win

	if rec.Wins != 2 || rec.Losses != 1 || rec.Ties != 1 {
		t.Fatalf("record = %+v, want 2 wins, 1 loss, 1 tie", rec)
	}
	if got := rec.WinRate(); got != 67 {
		t.Errorf("WinRate() = %d, want 67 (2 of 3 decided)", got)
	}

	var empty WinLossRecord
	if got := empty.WinRate(); got != 0 {
		t.Errorf("WinRate() on empty record = %d, want 0", got)
	}

	onlyTies := WinLossRecord{Ties: 3}
	if got := onlyTies.WinRate(); got != 0 {
		t.Errorf("WinRate() with only ties = %d, want 0", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to MatchStatus
		want     bool
	}{
		{StatusScheduled, StatusLive, true},
		{StatusScheduled, StatusCanceled, true},
		{StatusScheduled, StatusFinished, false},
		{StatusLive, StatusFinished, true},
		{StatusLive, StatusCanceled, true},
		{StatusLive, StatusScheduled, false},
		{StatusFinished, StatusCanceled, false},
		{StatusFinished, StatusLive, false},
		{StatusCanceled, StatusLive, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	if !Terminal(StatusFinished) || !Terminal(StatusCanceled) {
		t.Error("FINISHED and CANCELED must be terminal")
	}
	if Terminal(StatusScheduled) || Terminal(StatusLive) {
		t.Error("SCHEDULED and LIVE must not be terminal")
	}
}
