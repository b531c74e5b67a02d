// scout/session/session_test.go
package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	sharedservice "github.com/Renan-Rosa/rally-scout/shared/service"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// fakeGateway mirrors the roster service's behavior in memory so the session
// logic can be tested without HTTP or a database.
type fakeGateway struct {
	match   models.Match
	lineup  []models.LineupSlot
	actions []models.Action

	failNext bool
	calls    int
}

var errGatewayDown = fmt.Errorf("%w: gateway refused", api.ErrConflict)

func (fg *fakeGateway) fail() error {
	if fg.failNext {
		fg.failNext = false
		return errGatewayDown
	}
	return nil
}

func (fg *fakeGateway) matchCopy() *models.Match {
	m := fg.match
	m.Sets = append([]volleyball.SetScore(nil), fg.match.Sets...)
	return &m
}

func (fg *fakeGateway) GetMatch(ctx context.Context, matchID string) (*sharedservice.MatchDetailResponse, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	return &sharedservice.MatchDetailResponse{
		Match:  fg.matchCopy(),
		Lineup: append([]models.LineupSlot(nil), fg.lineup...),
	}, nil
}

func (fg *fakeGateway) record(playerID string, t volleyball.ActionType, r volleyball.ActionResult, opp bool) (*sharedservice.ActionResponse, error) {
	if err := fg.fail(); err != nil {
		return nil, err
	}
	home, away := volleyball.PointDelta(r, opp)
	fg.match.ScoreHome += home
	fg.match.ScoreAway += away

	action := models.Action{
		ID:              fmt.Sprintf("action-%d", len(fg.actions)+1),
		MatchID:         fg.match.ID,
		PlayerID:        playerID,
		Type:            t,
		Result:          r,
		Set:             fg.match.CurrentSet,
		IsOpponentPoint: opp,
	}
	fg.actions = append(fg.actions, action)
	return &sharedservice.ActionResponse{Action: &action, Match: fg.matchCopy()}, nil
}

func (fg *fakeGateway) RecordAction(ctx context.Context, matchID string, req sharedservice.RecordActionRequest) (*sharedservice.ActionResponse, error) {
	fg.calls++
	return fg.record(req.PlayerID, req.Type, req.Result, req.IsOpponentPoint)
}

func (fg *fakeGateway) RecordOpponentError(ctx context.Context, matchID string) (*sharedservice.ActionResponse, error) {
	fg.calls++
	return fg.record("", volleyball.ActionServe, volleyball.ResultPoint, false)
}

func (fg *fakeGateway) UndoLastAction(ctx context.Context, matchID string) (*sharedservice.ActionResponse, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	if len(fg.actions) == 0 {
		return nil, fmt.Errorf("%w: no actions recorded", api.ErrConflict)
	}
	last := fg.actions[len(fg.actions)-1]
	fg.actions = fg.actions[:len(fg.actions)-1]

	home, away := volleyball.PointDelta(last.Result, last.IsOpponentPoint)
	fg.match.ScoreHome -= home
	fg.match.ScoreAway -= away
	return &sharedservice.ActionResponse{Action: &last, Match: fg.matchCopy()}, nil
}

func (fg *fakeGateway) setLineup(m map[int]string) {
	fg.lineup = fg.lineup[:0]
	for slot := volleyball.MinSlot; slot <= volleyball.MaxSlot; slot++ {
		if playerID, ok := m[slot]; ok {
			fg.lineup = append(fg.lineup, models.LineupSlot{
				ID:       fmt.Sprintf("%s:%d", fg.match.ID, slot),
				MatchID:  fg.match.ID,
				Slot:     slot,
				PlayerID: playerID,
			})
		}
	}
}

func (fg *fakeGateway) SaveLineup(ctx context.Context, matchID string, slots map[int]string) ([]models.LineupSlot, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	merged := models.LineupMap(fg.lineup)
	for slot, playerID := range slots {
		merged[slot] = playerID
	}
	fg.setLineup(merged)
	return append([]models.LineupSlot(nil), fg.lineup...), nil
}

func (fg *fakeGateway) RotateLineup(ctx context.Context, matchID string) ([]models.LineupSlot, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	fg.setLineup(volleyball.Rotate(models.LineupMap(fg.lineup)))
	return append([]models.LineupSlot(nil), fg.lineup...), nil
}

func (fg *fakeGateway) Substitute(ctx context.Context, matchID string, slot int, playerID string) ([]models.LineupSlot, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	m := models.LineupMap(fg.lineup)
	m[slot] = playerID
	fg.setLineup(m)
	return append([]models.LineupSlot(nil), fg.lineup...), nil
}

func (fg *fakeGateway) AdvanceSet(ctx context.Context, matchID string) (*models.Match, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	fg.match.Sets = append(fg.match.Sets, volleyball.SetScore{Home: fg.match.ScoreHome, Away: fg.match.ScoreAway})
	fg.match.CurrentSet++
	fg.match.ScoreHome = 0
	fg.match.ScoreAway = 0
	return fg.matchCopy(), nil
}

func (fg *fakeGateway) FinishMatch(ctx context.Context, matchID string) (*models.Match, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	fg.match.Sets = append(fg.match.Sets, volleyball.SetScore{Home: fg.match.ScoreHome, Away: fg.match.ScoreAway})
	fg.match.ScoreHome = 0
	fg.match.ScoreAway = 0
	fg.match.Status = volleyball.StatusFinished
	return fg.matchCopy(), nil
}

func (fg *fakeGateway) CancelMatch(ctx context.Context, matchID string) (*models.Match, error) {
	fg.calls++
	if err := fg.fail(); err != nil {
		return nil, err
	}
	fg.match.Status = volleyball.StatusCanceled
	return fg.matchCopy(), nil
}

func newLiveGateway() *fakeGateway {
	fg := &fakeGateway{
		match: models.Match{
			ID:         "match-1",
			TeamID:     "team-1",
			Opponent:   "Riverside VC",
			Status:     volleyball.StatusLive,
			CurrentSet: 1,
			Sets:       []volleyball.SetScore{},
		},
	}
	fg.setLineup(map[int]string{1: "p1", 2: "p2", 3: "p3", 4: "p4", 5: "p5", 6: "p6"})
	return fg
}

func openSession(t *testing.T, fg *fakeGateway) *LiveSession {
	t.Helper()
	ls, err := Open(context.Background(), fg, "user-1", fg.match.ID)
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	return ls
}

func TestOpenRequiresLiveMatch(t *testing.T) {
	fg := newLiveGateway()
	fg.match.Status = volleyball.StatusScheduled

	_, err := Open(context.Background(), fg, "user-1", fg.match.ID)
	if !errors.Is(err, ErrMatchNotLive) {
		t.Fatalf("Open() on scheduled match: got %v, want ErrMatchNotLive", err)
	}
}

func TestRecordAppliesScore(t *testing.T) {
	tests := []struct {
		name       string
		actionType volleyball.ActionType
		result     volleyball.ActionResult
		opponent   bool
		wantHome   int
		wantAway   int
	}{
		{"attack point scores home", volleyball.ActionAttack, volleyball.ResultPoint, false, 1, 0},
		{"serve error scores away", volleyball.ActionServe, volleyball.ResultError, false, 0, 1},
		{"positive dig scores nobody", volleyball.ActionDig, volleyball.ResultPositive, false, 0, 0},
		{"opponent entry scores nobody", volleyball.ActionAttack, volleyball.ResultPoint, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fg := newLiveGateway()
			ls := openSession(t, fg)

			playerID := "p1"
			if tt.opponent {
				playerID = ""
			}
			action, match, err := ls.Record(context.Background(), playerID, tt.actionType, tt.result, tt.opponent)
			if err != nil {
				t.Fatalf("Record() returned error: %v", err)
			}
			if action == nil {
				t.Fatal("Record() returned nil action")
			}
			if match.ScoreHome != tt.wantHome || match.ScoreAway != tt.wantAway {
				t.Errorf("score = %d-%d, want %d-%d", match.ScoreHome, match.ScoreAway, tt.wantHome, tt.wantAway)
			}
			if fg.match.ScoreHome != tt.wantHome || fg.match.ScoreAway != tt.wantAway {
				t.Errorf("gateway score = %d-%d, want %d-%d", fg.match.ScoreHome, fg.match.ScoreAway, tt.wantHome, tt.wantAway)
			}
		})
	}
}

func TestRecordRejectsInvalidCombination(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)
	callsBefore := fg.calls

	_, match, err := ls.Record(context.Background(), "p1", volleyball.ActionReceive, volleyball.ResultPoint, false)
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("Record() with invalid combination: got %v, want ErrInvalidAction", err)
	}
	if match.ScoreHome != 0 || match.ScoreAway != 0 {
		t.Errorf("score changed on rejected record: %d-%d", match.ScoreHome, match.ScoreAway)
	}
	if fg.calls != callsBefore {
		t.Error("gateway was called for a locally rejected record")
	}
}

func TestRecordRollsBackOnGatewayFailure(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)
	fg.failNext = true

	_, match, err := ls.Record(context.Background(), "p1", volleyball.ActionAttack, volleyball.ResultPoint, false)
	if err == nil {
		t.Fatal("Record() succeeded despite gateway failure")
	}
	if match.ScoreHome != 0 || match.ScoreAway != 0 {
		t.Errorf("score not rolled back after gateway failure: %d-%d", match.ScoreHome, match.ScoreAway)
	}

	// The session must still work after the rollback.
	_, match, err = ls.Record(context.Background(), "p1", volleyball.ActionAttack, volleyball.ResultPoint, false)
	if err != nil {
		t.Fatalf("Record() after rollback returned error: %v", err)
	}
	if match.ScoreHome != 1 {
		t.Errorf("score after successful retry = %d-%d, want 1-0", match.ScoreHome, match.ScoreAway)
	}
}

func TestOpponentErrorAwardsHomePoint(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	action, match, err := ls.RecordOpponentError(context.Background())
	if err != nil {
		t.Fatalf("RecordOpponentError() returned error: %v", err)
	}
	if match.ScoreHome != 1 || match.ScoreAway != 0 {
		t.Errorf("score = %d-%d, want 1-0", match.ScoreHome, match.ScoreAway)
	}
	if action.PlayerID != "" {
		t.Errorf("opponent error attributed to player %q", action.PlayerID)
	}
}

func TestUndoReversesLastEntry(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	if _, _, err := ls.Record(context.Background(), "p1", volleyball.ActionServe, volleyball.ResultError, false); err != nil {
		t.Fatalf("Record() returned error: %v", err)
	}

	undone, match, err := ls.Undo(context.Background())
	if err != nil {
		t.Fatalf("Undo() returned error: %v", err)
	}
	if undone.Result != volleyball.ResultError || undone.Type != volleyball.ActionServe {
		t.Errorf("undone entry = %s/%s, want SERVE/ERROR", undone.Type, undone.Result)
	}
	if match.ScoreHome != 0 || match.ScoreAway != 0 {
		t.Errorf("score after undo = %d-%d, want 0-0", match.ScoreHome, match.ScoreAway)
	}
}

func TestUndoOnEmptyLedgerFails(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	_, _, err := ls.Undo(context.Background())
	if !errors.Is(err, api.ErrConflict) {
		t.Fatalf("Undo() on empty ledger: got %v, want conflict", err)
	}
}

func TestRotateAdvancesLineup(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	lineup, err := ls.Rotate(context.Background())
	if err != nil {
		t.Fatalf("Rotate() returned error: %v", err)
	}

	// Slot 1 takes the old slot 2 player; slot 6 takes the old slot 1 player.
	want := map[int]string{1: "p2", 2: "p3", 3: "p4", 4: "p5", 5: "p6", 6: "p1"}
	for slot, playerID := range want {
		if lineup[slot] != playerID {
			t.Errorf("slot %d = %q, want %q", slot, lineup[slot], playerID)
		}
	}
}

func TestRotateRollsBackOnGatewayFailure(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)
	fg.failNext = true

	if _, err := ls.Rotate(context.Background()); err == nil {
		t.Fatal("Rotate() succeeded despite gateway failure")
	}

	lineup := ls.Lineup()
	for slot, want := range map[int]string{1: "p1", 2: "p2", 6: "p6"} {
		if lineup[slot] != want {
			t.Errorf("slot %d = %q after rollback, want %q", slot, lineup[slot], want)
		}
	}
}

func TestSubstituteRejectsEmptySlot(t *testing.T) {
	fg := newLiveGateway()
	fg.setLineup(map[int]string{1: "p1"})
	ls := openSession(t, fg)

	if _, err := ls.Substitute(context.Background(), 4, "p9"); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("Substitute() into empty slot: got %v, want ErrInvalidAction", err)
	}
}

func TestSubstituteSwapsSlot(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	lineup, err := ls.Substitute(context.Background(), 3, "p9")
	if err != nil {
		t.Fatalf("Substitute() returned error: %v", err)
	}
	if lineup[3] != "p9" {
		t.Errorf("slot 3 = %q, want p9", lineup[3])
	}
}

func TestAdvanceSetRollsBackOnGatewayFailure(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	if _, _, err := ls.Record(context.Background(), "p1", volleyball.ActionAttack, volleyball.ResultPoint, false); err != nil {
		t.Fatalf("Record() returned error: %v", err)
	}
	fg.failNext = true

	if _, err := ls.AdvanceSet(context.Background()); err == nil {
		t.Fatal("AdvanceSet() succeeded despite gateway failure")
	}

	match := ls.Match()
	if match.CurrentSet != 1 || len(match.Sets) != 0 {
		t.Errorf("set state after rollback: set %d with %d completed sets, want set 1 with 0", match.CurrentSet, len(match.Sets))
	}
	if match.ScoreHome != 1 {
		t.Errorf("running score after rollback = %d-%d, want 1-0", match.ScoreHome, match.ScoreAway)
	}
}

func TestAdvanceSetOpensNextSet(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	if _, _, err := ls.Record(context.Background(), "p1", volleyball.ActionAttack, volleyball.ResultPoint, false); err != nil {
		t.Fatalf("Record() returned error: %v", err)
	}

	match, err := ls.AdvanceSet(context.Background())
	if err != nil {
		t.Fatalf("AdvanceSet() returned error: %v", err)
	}
	if match.CurrentSet != 2 {
		t.Errorf("CurrentSet = %d, want 2", match.CurrentSet)
	}
	if match.ScoreHome != 0 || match.ScoreAway != 0 {
		t.Errorf("running score = %d-%d, want 0-0", match.ScoreHome, match.ScoreAway)
	}
	if len(match.Sets) != 1 || match.Sets[0] != (volleyball.SetScore{Home: 1, Away: 0}) {
		t.Errorf("completed sets = %v, want [{1 0}]", match.Sets)
	}
}

func TestAdvanceSetRefusedAtCeiling(t *testing.T) {
	fg := newLiveGateway()
	fg.match.CurrentSet = volleyball.MaxSets
	ls := openSession(t, fg)

	if _, err := ls.AdvanceSet(context.Background()); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("AdvanceSet() at set %d: got %v, want ErrInvalidAction", volleyball.MaxSets, err)
	}
}

func TestFinishFoldsRunningScore(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	if _, _, err := ls.Record(context.Background(), "p1", volleyball.ActionAttack, volleyball.ResultPoint, false); err != nil {
		t.Fatalf("Record() returned error: %v", err)
	}

	match, err := ls.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish() returned error: %v", err)
	}
	if match.Status != volleyball.StatusFinished {
		t.Errorf("Status = %s, want FINISHED", match.Status)
	}
	if len(match.Sets) != 1 || match.Sets[0] != (volleyball.SetScore{Home: 1, Away: 0}) {
		t.Errorf("completed sets = %v, want [{1 0}]", match.Sets)
	}

	// The session now refuses further events.
	if _, _, err := ls.Record(context.Background(), "p1", volleyball.ActionAttack, volleyball.ResultPoint, false); !errors.Is(err, ErrMatchNotLive) {
		t.Fatalf("Record() on finished match: got %v, want ErrMatchNotLive", err)
	}
}

func TestRefreshAdoptsGatewayState(t *testing.T) {
	fg := newLiveGateway()
	ls := openSession(t, fg)

	// Another scout moved the score on the roster service directly.
	fg.match.ScoreHome = 7
	fg.match.ScoreAway = 4

	match, err := ls.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}
	if match.ScoreHome != 7 || match.ScoreAway != 4 {
		t.Errorf("score after refresh = %d-%d, want 7-4", match.ScoreHome, match.ScoreAway)
	}
}
