// scout/session/session.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	sharedservice "github.com/Renan-Rosa/rally-scout/shared/service"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// Errors raised by the session's own validation, before any gateway call.
var (
	ErrMatchNotLive  = fmt.Errorf("match is not live")
	ErrInvalidAction = fmt.Errorf("invalid action")
	ErrNoLineup      = fmt.Errorf("match has no lineup")
)

// Gateway is the durable side of every session mutation. The roster service
// client satisfies it; tests plug in a fake. A mutation only counts once the
// gateway accepted it.
type Gateway interface {
	GetMatch(ctx context.Context, matchID string) (*sharedservice.MatchDetailResponse, error)
	RecordAction(ctx context.Context, matchID string, req sharedservice.RecordActionRequest) (*sharedservice.ActionResponse, error)
	RecordOpponentError(ctx context.Context, matchID string) (*sharedservice.ActionResponse, error)
	UndoLastAction(ctx context.Context, matchID string) (*sharedservice.ActionResponse, error)
	SaveLineup(ctx context.Context, matchID string, slots map[int]string) ([]models.LineupSlot, error)
	RotateLineup(ctx context.Context, matchID string) ([]models.LineupSlot, error)
	Substitute(ctx context.Context, matchID string, slot int, playerID string) ([]models.LineupSlot, error)
	AdvanceSet(ctx context.Context, matchID string) (*models.Match, error)
	FinishMatch(ctx context.Context, matchID string) (*models.Match, error)
	CancelMatch(ctx context.Context, matchID string) (*models.Match, error)
}

// LiveSession mirrors one live match in memory so the scouting UI gets its
// feedback from local state instead of a database round trip. Every mutation
// is applied optimistically, then confirmed with the gateway; on gateway
// failure the exact local delta is rolled back, never a full reload.
//
// All operations serialize on the session mutex. Two scouts hammering the
// same match see a strict order, which is what makes undo well-defined.
type LiveSession struct {
	MatchID string
	UserID  string

	mu      sync.Mutex
	gateway Gateway
	match   models.Match
	lineup  map[int]string
}

// Open fetches the match from the gateway and builds a live session around
// it. Only LIVE matches can be scouted.
func Open(ctx context.Context, gateway Gateway, userID, matchID string) (*LiveSession, error) {
	detail, err := gateway.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if detail.Match.Status != volleyball.StatusLive {
		return nil, ErrMatchNotLive
	}

	return &LiveSession{
		MatchID: matchID,
		UserID:  userID,
		gateway: gateway,
		match:   *detail.Match,
		lineup:  models.LineupMap(detail.Lineup),
	}, nil
}

// Match returns a copy of the session's current view of the match.
func (ls *LiveSession) Match() models.Match {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.copyMatchLocked()
}

// Lineup returns a copy of the session's current slot mapping.
func (ls *LiveSession) Lineup() map[int]string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.copyLineupLocked()
}

func (ls *LiveSession) copyMatchLocked() models.Match {
	m := ls.match
	m.Sets = append([]volleyball.SetScore(nil), ls.match.Sets...)
	return m
}

func (ls *LiveSession) copyLineupLocked() map[int]string {
	cp := make(map[int]string, len(ls.lineup))
	for slot, playerID := range ls.lineup {
		cp[slot] = playerID
	}
	return cp
}

// Record appends one scouted event. The score effect shows up locally before
// the gateway round trip completes; if the gateway refuses, the effect is
// taken back.
func (ls *LiveSession) Record(ctx context.Context, playerID string, actionType volleyball.ActionType, result volleyball.ActionResult, isOpponentPoint bool) (*models.Action, models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return nil, ls.copyMatchLocked(), ErrMatchNotLive
	}
	if !volleyball.ValidCombination(actionType, result) {
		return nil, ls.copyMatchLocked(), fmt.Errorf("%w: result %s is not allowed for action type %s", ErrInvalidAction, result, actionType)
	}
	if isOpponentPoint && playerID != "" {
		return nil, ls.copyMatchLocked(), fmt.Errorf("%w: opponent entries must not name a roster player", ErrInvalidAction)
	}

	homeDelta, awayDelta := volleyball.PointDelta(result, isOpponentPoint)
	ls.match.ScoreHome += homeDelta
	ls.match.ScoreAway += awayDelta

	resp, err := ls.gateway.RecordAction(ctx, ls.MatchID, sharedservice.RecordActionRequest{
		PlayerID:        playerID,
		Type:            actionType,
		Result:          result,
		IsOpponentPoint: isOpponentPoint,
	})
	if err != nil {
		ls.match.ScoreHome -= homeDelta
		ls.match.ScoreAway -= awayDelta
		return nil, ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(resp.Match)
	return resp.Action, ls.copyMatchLocked(), nil
}

// RecordOpponentError is the one-tap shortcut awarding the home team a point
// for an opponent mistake.
func (ls *LiveSession) RecordOpponentError(ctx context.Context) (*models.Action, models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return nil, ls.copyMatchLocked(), ErrMatchNotLive
	}

	ls.match.ScoreHome++

	resp, err := ls.gateway.RecordOpponentError(ctx, ls.MatchID)
	if err != nil {
		ls.match.ScoreHome--
		return nil, ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(resp.Match)
	return resp.Action, ls.copyMatchLocked(), nil
}

// Undo removes the most recent ledger entry. The session does not guess the
// entry locally; the gateway names what was undone and the session adopts the
// reversed score, so undo stays an exact inverse even when another scout
// recorded the entry.
func (ls *LiveSession) Undo(ctx context.Context) (*models.Action, models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return nil, ls.copyMatchLocked(), ErrMatchNotLive
	}

	resp, err := ls.gateway.UndoLastAction(ctx, ls.MatchID)
	if err != nil {
		return nil, ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(resp.Match)
	return resp.Action, ls.copyMatchLocked(), nil
}

// SaveLineup assigns players to slots, merging over the current lineup.
func (ls *LiveSession) SaveLineup(ctx context.Context, slots map[int]string) (map[int]string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for slot := range slots {
		if !volleyball.ValidSlot(slot) {
			return ls.copyLineupLocked(), fmt.Errorf("%w: slot %d out of range", ErrInvalidAction, slot)
		}
	}

	before := ls.copyLineupLocked()
	for slot, playerID := range slots {
		ls.lineup[slot] = playerID
	}

	saved, err := ls.gateway.SaveLineup(ctx, ls.MatchID, slots)
	if err != nil {
		ls.lineup = before
		return ls.copyLineupLocked(), err
	}

	ls.lineup = models.LineupMap(saved)
	return ls.copyLineupLocked(), nil
}

// Rotate advances the lineup one position clockwise.
func (ls *LiveSession) Rotate(ctx context.Context) (map[int]string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return ls.copyLineupLocked(), ErrMatchNotLive
	}
	if len(ls.lineup) == 0 {
		return ls.copyLineupLocked(), ErrNoLineup
	}

	before := ls.lineup
	ls.lineup = volleyball.Rotate(ls.lineup)

	rotated, err := ls.gateway.RotateLineup(ctx, ls.MatchID)
	if err != nil {
		ls.lineup = before
		return ls.copyLineupLocked(), err
	}

	ls.lineup = models.LineupMap(rotated)
	return ls.copyLineupLocked(), nil
}

// Substitute swaps the occupant of one slot for a bench player.
func (ls *LiveSession) Substitute(ctx context.Context, slot int, playerID string) (map[int]string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return ls.copyLineupLocked(), ErrMatchNotLive
	}
	if !volleyball.ValidSlot(slot) {
		return ls.copyLineupLocked(), fmt.Errorf("%w: slot %d out of range", ErrInvalidAction, slot)
	}
	outgoing, filled := ls.lineup[slot]
	if !filled {
		return ls.copyLineupLocked(), fmt.Errorf("%w: slot %d is empty", ErrInvalidAction, slot)
	}

	ls.lineup[slot] = playerID

	updated, err := ls.gateway.Substitute(ctx, ls.MatchID, slot, playerID)
	if err != nil {
		ls.lineup[slot] = outgoing
		return ls.copyLineupLocked(), err
	}

	ls.lineup = models.LineupMap(updated)
	return ls.copyLineupLocked(), nil
}

// AdvanceSet closes the running set and opens the next one at 0-0.
func (ls *LiveSession) AdvanceSet(ctx context.Context) (models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return ls.copyMatchLocked(), ErrMatchNotLive
	}
	if ls.match.CurrentSet >= volleyball.MaxSets {
		return ls.copyMatchLocked(), fmt.Errorf("%w: set %d is the last one", ErrInvalidAction, ls.match.CurrentSet)
	}

	closing := volleyball.SetScore{Home: ls.match.ScoreHome, Away: ls.match.ScoreAway}
	ls.match.Sets = append(ls.match.Sets, closing)
	ls.match.CurrentSet++
	ls.match.ScoreHome = 0
	ls.match.ScoreAway = 0

	updated, err := ls.gateway.AdvanceSet(ctx, ls.MatchID)
	if err != nil {
		ls.match.Sets = ls.match.Sets[:len(ls.match.Sets)-1]
		ls.match.CurrentSet--
		ls.match.ScoreHome = closing.Home
		ls.match.ScoreAway = closing.Away
		return ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(updated)
	return ls.copyMatchLocked(), nil
}

// Finish ends the match, folding the running score in as the final set.
func (ls *LiveSession) Finish(ctx context.Context) (models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.match.Status != volleyball.StatusLive {
		return ls.copyMatchLocked(), ErrMatchNotLive
	}

	updated, err := ls.gateway.FinishMatch(ctx, ls.MatchID)
	if err != nil {
		return ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(updated)
	return ls.copyMatchLocked(), nil
}

// Cancel abandons the match.
func (ls *LiveSession) Cancel(ctx context.Context) (models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	updated, err := ls.gateway.CancelMatch(ctx, ls.MatchID)
	if err != nil {
		return ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(updated)
	return ls.copyMatchLocked(), nil
}

// Refresh re-reads the match and lineup from the gateway, replacing the local
// mirror. The reconciler calls this so a drifted session converges back to
// the durable truth.
func (ls *LiveSession) Refresh(ctx context.Context) (models.Match, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	detail, err := ls.gateway.GetMatch(ctx, ls.MatchID)
	if err != nil {
		return ls.copyMatchLocked(), err
	}

	ls.adoptMatchLocked(detail.Match)
	ls.lineup = models.LineupMap(detail.Lineup)
	return ls.copyMatchLocked(), nil
}

// Live reports whether the session still mirrors a LIVE match.
func (ls *LiveSession) Live() bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.match.Status == volleyball.StatusLive
}

// adoptMatchLocked replaces the local mirror with the gateway's authoritative
// view. Rollbacks handle failures; this handles success.
func (ls *LiveSession) adoptMatchLocked(authoritative *models.Match) {
	if authoritative == nil {
		return
	}
	ls.match = *authoritative
	ls.match.Sets = append([]volleyball.SetScore(nil), authoritative.Sets...)
}

// EventResult pairs the ledger entry an operation produced (nil for pure
// state transitions) with the match state after it applied.
type EventResult struct {
	Action *models.Action `json:"action,omitempty"`
	Match  models.Match   `json:"match"`
}

// Scoreboard is the live snapshot the session publishes to Redis for cheap
// spectator reads.
type Scoreboard struct {
	MatchID    string                 `json:"matchId"`
	TeamID     string                 `json:"teamId"`
	Opponent   string                 `json:"opponent"`
	Status     volleyball.MatchStatus `json:"status"`
	CurrentSet int                    `json:"currentSet"`
	ScoreHome  int                    `json:"scoreHome"`
	ScoreAway  int                    `json:"scoreAway"`
	Sets       []volleyball.SetScore  `json:"sets"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// Snapshot captures the session's current state as a publishable scoreboard.
func (ls *LiveSession) Snapshot() Scoreboard {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return Scoreboard{
		MatchID:    ls.match.ID,
		TeamID:     ls.match.TeamID,
		Opponent:   ls.match.Opponent,
		Status:     ls.match.Status,
		CurrentSet: ls.match.CurrentSet,
		ScoreHome:  ls.match.ScoreHome,
		ScoreAway:  ls.match.ScoreAway,
		Sets:       append([]volleyball.SetScore(nil), ls.match.Sets...),
		UpdatedAt:  time.Now(),
	}
}
