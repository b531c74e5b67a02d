// roster/service/match_service_test.go
package service

import (
	"testing"
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

func TestNewScheduledMatchDefaults(t *testing.T) {
	date := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	match := newScheduledMatch("team-1", "Riverside VC", "Gym B", date)

	if match.ID == "" {
		t.Error("match created without an ID")
	}
	if match.Status != volleyball.StatusScheduled {
		t.Errorf("Status = %s, want SCHEDULED", match.Status)
	}
	// The set counter is constrained to 1..5 for the match's whole life, so a
	// fixture already points at its first set before it goes live.
	if match.CurrentSet != 1 {
		t.Errorf("CurrentSet = %d, want 1", match.CurrentSet)
	}
	if match.ScoreHome != 0 || match.ScoreAway != 0 {
		t.Errorf("initial score = %d-%d, want 0-0", match.ScoreHome, match.ScoreAway)
	}
	if match.Sets == nil || len(match.Sets) != 0 {
		t.Errorf("Sets = %v, want empty non-nil history", match.Sets)
	}
	if match.CreatedAt == nil {
		t.Error("CreatedAt not stamped")
	}
	if !match.Date.Equal(date) {
		t.Errorf("Date = %v, want %v", match.Date, date)
	}
}
