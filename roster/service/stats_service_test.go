// roster/service/stats_service_test.go
package service

import (
	"testing"

	"github.com/Renan-Rosa/rally-scout/roster/store"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

func TestBuildBreakdownOrdersAndScores(t *testing.T) {
	counts := []store.ResultCounts{
		{Type: volleyball.ActionAttack, Result: volleyball.ResultError, Count: 1},
		{Type: volleyball.ActionAttack, Result: volleyball.ResultPoint, Count: 2},
		{Type: volleyball.ActionServe, Result: volleyball.ResultNeutral, Count: 4},
	}

	breakdown, overall, total := buildBreakdown(counts)

	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(breakdown) != 2 {
		t.Fatalf("got %d breakdown rows, want 2", len(breakdown))
	}

	// Serve sorts before attack regardless of aggregation order; types with
	// no entries do not appear.
	if breakdown[0].Type != volleyball.ActionServe || breakdown[1].Type != volleyball.ActionAttack {
		t.Errorf("breakdown order = [%s %s], want [SERVE ATTACK]", breakdown[0].Type, breakdown[1].Type)
	}

	if breakdown[0].Total != 4 || breakdown[0].Efficiency != 50 {
		t.Errorf("serve row = total %d efficiency %d, want 4 and 50", breakdown[0].Total, breakdown[0].Efficiency)
	}
	// [ERROR, POINT, POINT] weighs (0+100+100)/3, rounded.
	if breakdown[1].Total != 3 || breakdown[1].Efficiency != 67 {
		t.Errorf("attack row = total %d efficiency %d, want 3 and 67", breakdown[1].Total, breakdown[1].Efficiency)
	}

	if overall[volleyball.ResultPoint] != 2 || overall[volleyball.ResultNeutral] != 4 || overall[volleyball.ResultError] != 1 {
		t.Errorf("overall tallies = %v", overall)
	}
}

func TestBuildBreakdownEmpty(t *testing.T) {
	breakdown, overall, total := buildBreakdown(nil)
	if len(breakdown) != 0 || len(overall) != 0 || total != 0 {
		t.Errorf("empty input produced breakdown %v, overall %v, total %d", breakdown, overall, total)
	}
}
