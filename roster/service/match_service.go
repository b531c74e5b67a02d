// roster/service/match_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Renan-Rosa/rally-scout/roster/store"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// MatchService encapsulates the business logic for matches: the fixture CRUD,
// the lifecycle state machine, the append-only action ledger with its
// single-level undo, and the lineup with rotation and substitution.
type MatchService struct {
	matchStore  *store.MatchStore
	teamStore   *store.TeamStore
	playerStore *store.PlayerStore
	lineupStore *store.LineupStore
	actionStore *store.ActionStore
}

// NewMatchService creates a new MatchService instance.
func NewMatchService(
	ms *store.MatchStore,
	ts *store.TeamStore,
	ps *store.PlayerStore,
	ls *store.LineupStore,
	as *store.ActionStore,
) *MatchService {
	return &MatchService{
		matchStore:  ms,
		teamStore:   ts,
		playerStore: ps,
		lineupStore: ls,
		actionStore: as,
	}
}

// resolveMatch loads a match and verifies the caller owns its team. A match
// of someone else's team is reported as not found, never as forbidden.
func (ms *MatchService) resolveMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := ms.matchStore.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("service failed to get match: %w", err)
	}
	if _, err := ms.teamStore.GetTeam(ctx, userID, match.TeamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("service failed to resolve match's team: %w", err)
	}
	return match, nil
}

// newScheduledMatch builds a fresh SCHEDULED fixture. The set counter points
// at set 1 from the start; going LIVE opens that set, it never renumbers it.
func newScheduledMatch(teamID, opponent, location string, date time.Time) *models.Match {
	now := time.Now()
	return &models.Match{
		ID:         uuid.New().String(),
		TeamID:     teamID,
		Opponent:   opponent,
		Location:   location,
		Date:       date,
		Status:     volleyball.StatusScheduled,
		CurrentSet: 1,
		Sets:       []volleyball.SetScore{},
		CreatedAt:  &now,
	}
}

// CreateMatch validates and persists a new SCHEDULED fixture.
func (ms *MatchService) CreateMatch(ctx context.Context, userID, teamID, opponent, location string, date time.Time) (*models.Match, error) {
	if _, err := ms.teamStore.GetTeam(ctx, userID, teamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to resolve team: %w", err)
	}

	opponent = strings.TrimSpace(opponent)
	if opponent == "" {
		return nil, invalid("opponent name must not be empty")
	}
	if date.IsZero() {
		return nil, invalid("match date must be set")
	}

	match := newScheduledMatch(teamID, opponent, strings.TrimSpace(location), date)

	if err := ms.matchStore.CreateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("service failed to create match: %w", err)
	}
	return match, nil
}

// GetMatch retrieves one match with its current lineup.
func (ms *MatchService) GetMatch(ctx context.Context, userID, matchID string) (*models.Match, []models.LineupSlot, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, nil, err
	}
	lineup, err := ms.lineupStore.GetLineup(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("service failed to get lineup: %w", err)
	}
	return match, lineup, nil
}

// ListMatches returns a team's fixtures, newest first.
func (ms *MatchService) ListMatches(ctx context.Context, userID, teamID string) ([]models.Match, error) {
	if _, err := ms.teamStore.GetTeam(ctx, userID, teamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to resolve team: %w", err)
	}
	matches, err := ms.matchStore.ListMatchesByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("service failed to list matches: %w", err)
	}
	return matches, nil
}

// UpdateMatch changes a fixture's opponent, location or date. Only SCHEDULED
// matches can be rescheduled.
func (ms *MatchService) UpdateMatch(ctx context.Context, userID, matchID, opponent, location string, date time.Time) (*models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != volleyball.StatusScheduled {
		return nil, ErrMatchStateConflict
	}

	if opponent = strings.TrimSpace(opponent); opponent != "" {
		match.Opponent = opponent
	}
	if location = strings.TrimSpace(location); location != "" {
		match.Location = location
	}
	if !date.IsZero() {
		match.Date = date
	}

	if err := ms.matchStore.UpdateMatch(ctx, match); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("service failed to update match: %w", err)
	}
	return match, nil
}

// DeleteMatch removes a match with its lineup and ledger. LIVE matches must
// be finished or canceled first.
func (ms *MatchService) DeleteMatch(ctx context.Context, userID, matchID string) error {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return err
	}
	if match.Status == volleyball.StatusLive {
		return ErrMatchStateConflict
	}

	if err := ms.matchStore.DeleteMatch(ctx, matchID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("service failed to delete match: %w", err)
	}
	if err := ms.actionStore.DeleteActionsByMatches(ctx, []string{matchID}); err != nil {
		log.Printf("ERROR: Failed to delete ledger of removed match %s: %v", matchID, err)
	}
	if err := ms.lineupStore.DeleteLineupsByMatches(ctx, []string{matchID}); err != nil {
		log.Printf("ERROR: Failed to delete lineup of removed match %s: %v", matchID, err)
	}
	return nil
}

// StartMatch moves a SCHEDULED match to LIVE, opening set 1 at 0-0. A team
// can only have one LIVE match at a time.
func (ms *MatchService) StartMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if !volleyball.CanTransition(match.Status, volleyball.StatusLive) {
		return nil, ErrMatchStateConflict
	}

	// Scouting needs a court to attribute actions to.
	lineup, err := ms.lineupStore.GetLineup(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("service failed to get lineup: %w", err)
	}
	if len(lineup) == 0 {
		return nil, ErrLineupRequired
	}

	if err := ms.matchStore.StartMatch(ctx, matchID, match.TeamID); err != nil {
		switch {
		case errors.Is(err, store.ErrLiveMatchExists):
			return nil, ErrLiveMatchExists
		case errors.Is(err, store.ErrMatchStateConflict):
			return nil, ErrMatchStateConflict
		}
		return nil, fmt.Errorf("service failed to start match: %w", err)
	}
	return ms.resolveMatch(ctx, userID, matchID)
}

// AdvanceSet closes the current set of a LIVE match and opens the next one at
// 0-0. The running score becomes the closed set's final score. Refused once
// the best-of-5 ceiling is reached.
func (ms *MatchService) AdvanceSet(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != volleyball.StatusLive || match.CurrentSet >= volleyball.MaxSets {
		return nil, ErrMatchStateConflict
	}

	closing := volleyball.SetScore{Home: match.ScoreHome, Away: match.ScoreAway}
	if err := ms.matchStore.AdvanceSet(ctx, matchID, closing); err != nil {
		if errors.Is(err, store.ErrMatchStateConflict) {
			return nil, ErrMatchStateConflict
		}
		return nil, fmt.Errorf("service failed to advance set: %w", err)
	}
	return ms.resolveMatch(ctx, userID, matchID)
}

// FinishMatch moves a LIVE match to FINISHED, folding the running score into
// the completed-sets sequence as the final set.
func (ms *MatchService) FinishMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if !volleyball.CanTransition(match.Status, volleyball.StatusFinished) {
		return nil, ErrMatchStateConflict
	}

	closing := volleyball.SetScore{Home: match.ScoreHome, Away: match.ScoreAway}
	if err := ms.matchStore.FinishMatch(ctx, matchID, closing); err != nil {
		if errors.Is(err, store.ErrMatchStateConflict) {
			return nil, ErrMatchStateConflict
		}
		return nil, fmt.Errorf("service failed to finish match: %w", err)
	}
	return ms.resolveMatch(ctx, userID, matchID)
}

// CancelMatch moves a SCHEDULED or LIVE match to CANCELED. Canceling an
// already canceled match is a no-op rather than an error; retried cancels
// should not scare anyone.
func (ms *MatchService) CancelMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == volleyball.StatusCanceled {
		return match, nil
	}
	if !volleyball.CanTransition(match.Status, volleyball.StatusCanceled) {
		return nil, ErrMatchStateConflict
	}

	if err := ms.matchStore.CancelMatch(ctx, matchID); err != nil {
		if errors.Is(err, store.ErrMatchStateConflict) {
			return nil, ErrMatchStateConflict
		}
		return nil, fmt.Errorf("service failed to cancel match: %w", err)
	}
	match.Status = volleyball.StatusCanceled
	return match, nil
}

// RecordAction appends one scouted event to a LIVE match's ledger and applies
// its score effect. PlayerID may be empty for an unattributed event; opponent
// entries must be unattributed.
func (ms *MatchService) RecordAction(ctx context.Context, userID, matchID, playerID string, actionType volleyball.ActionType, result volleyball.ActionResult, isOpponentPoint bool) (*models.Action, *models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, nil, err
	}
	if match.Status != volleyball.StatusLive {
		return nil, nil, ErrMatchStateConflict
	}
	if !volleyball.ValidCombination(actionType, result) {
		return nil, nil, invalid("result %s is not allowed for action type %s", result, actionType)
	}
	if isOpponentPoint && playerID != "" {
		return nil, nil, invalid("opponent entries must not name a roster player")
	}
	if playerID != "" {
		player, err := ms.playerStore.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, nil, ErrPlayerNotFound
			}
			return nil, nil, fmt.Errorf("service failed to resolve player: %w", err)
		}
		if player.TeamID != match.TeamID {
			return nil, nil, invalid("player %s is not on the match's team", playerID)
		}
	}

	action := &models.Action{
		ID:              uuid.New().String(),
		MatchID:         matchID,
		PlayerID:        playerID,
		Type:            actionType,
		Result:          result,
		Set:             match.CurrentSet,
		IsOpponentPoint: isOpponentPoint,
		CreatedAt:       time.Now(),
	}

	if err := ms.actionStore.RecordAction(ctx, action); err != nil {
		if errors.Is(err, store.ErrMatchStateConflict) {
			return nil, nil, ErrMatchStateConflict
		}
		return nil, nil, fmt.Errorf("service failed to record action: %w", err)
	}

	updated, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return action, nil, err
	}
	return action, updated, nil
}

// RecordOpponentError is the one-tap shortcut for "the opponent just gave us
// a point". It records an unattributed winning serve, which awards the home
// point through the ordinary scoring rule and undoes like any other entry.
func (ms *MatchService) RecordOpponentError(ctx context.Context, userID, matchID string) (*models.Action, *models.Match, error) {
	return ms.RecordAction(ctx, userID, matchID, "", volleyball.ActionServe, volleyball.ResultPoint, false)
}

// UndoLast removes the most recent ledger entry of a LIVE match and reverses
// its score effect. One level only; calling it twice removes two entries, not
// a redo.
func (ms *MatchService) UndoLast(ctx context.Context, userID, matchID string) (*models.Action, *models.Match, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, nil, err
	}
	if match.Status != volleyball.StatusLive {
		return nil, nil, ErrMatchStateConflict
	}

	undone, err := ms.actionStore.UndoLast(ctx, matchID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoActions):
			return nil, nil, ErrNothingToUndo
		case errors.Is(err, store.ErrMatchStateConflict):
			return nil, nil, ErrMatchStateConflict
		}
		return nil, nil, fmt.Errorf("service failed to undo last action: %w", err)
	}

	updated, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return undone, nil, err
	}
	return undone, updated, nil
}

// ListActions returns a match's ledger in recording order.
func (ms *MatchService) ListActions(ctx context.Context, userID, matchID string) ([]models.Action, error) {
	if _, err := ms.resolveMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}
	actions, err := ms.actionStore.ListActionsByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("service failed to list actions: %w", err)
	}
	return actions, nil
}

// validateLineup checks slot bounds, player membership and that no player
// occupies two of the requested slots.
func (ms *MatchService) validateLineup(ctx context.Context, teamID string, lineup map[int]string) error {
	seen := make(map[string]int, len(lineup))
	for slot, playerID := range lineup {
		if !volleyball.ValidSlot(slot) {
			return invalid("slot %d out of range %d-%d", slot, volleyball.MinSlot, volleyball.MaxSlot)
		}
		if playerID == "" {
			return invalid("slot %d has no player assigned", slot)
		}
		if prev, dup := seen[playerID]; dup {
			return invalid("player %s assigned to both slot %d and slot %d", playerID, prev, slot)
		}
		seen[playerID] = slot

		player, err := ms.playerStore.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("service failed to resolve lineup player: %w", err)
		}
		if player.TeamID != teamID {
			return invalid("player %s is not on the match's team", playerID)
		}
	}
	return nil
}

// SaveLineup writes slot assignments for a match. Partial lineups are
// accepted; unmentioned slots keep their occupant. A player already standing
// in another slot is rejected, use Substitute or Rotate for moves.
func (ms *MatchService) SaveLineup(ctx context.Context, userID, matchID string, lineup map[int]string) ([]models.LineupSlot, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == volleyball.StatusFinished || match.Status == volleyball.StatusCanceled {
		return nil, ErrMatchStateConflict
	}
	if len(lineup) == 0 {
		return nil, invalid("lineup must assign at least one slot")
	}
	if err := ms.validateLineup(ctx, match.TeamID, lineup); err != nil {
		return nil, err
	}

	// A requested player must not stay in an old slot that is not being
	// overwritten, or the court ends up with the player twice.
	current, err := ms.lineupStore.GetLineup(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("service failed to get current lineup: %w", err)
	}
	requested := make(map[string]int, len(lineup))
	for slot, playerID := range lineup {
		requested[playerID] = slot
	}
	for _, row := range current {
		if newSlot, ok := requested[row.PlayerID]; ok {
			if _, overwritten := lineup[row.Slot]; !overwritten && newSlot != row.Slot {
				return nil, invalid("player %s already stands in slot %d", row.PlayerID, row.Slot)
			}
		}
	}

	if err := ms.lineupStore.UpsertSlots(ctx, matchID, lineup); err != nil {
		return nil, fmt.Errorf("service failed to save lineup: %w", err)
	}
	return ms.lineupStore.GetLineup(ctx, matchID)
}

// Rotate advances the lineup one position clockwise: every filled slot hands
// its player to the next lower slot, slot 1 wraps to slot 6. Empty slots stay
// empty.
func (ms *MatchService) Rotate(ctx context.Context, userID, matchID string) ([]models.LineupSlot, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != volleyball.StatusLive {
		return nil, ErrMatchStateConflict
	}

	current, err := ms.lineupStore.GetLineup(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("service failed to get lineup: %w", err)
	}
	if len(current) == 0 {
		return nil, invalid("match has no lineup to rotate")
	}

	rotated := volleyball.Rotate(models.LineupMap(current))
	if err := ms.lineupStore.ReplaceLineup(ctx, matchID, rotated); err != nil {
		return nil, fmt.Errorf("service failed to apply rotation: %w", err)
	}
	return ms.lineupStore.GetLineup(ctx, matchID)
}

// Substitute swaps the player standing in one slot for a bench player. The
// incoming player must be on the team and not already on court.
func (ms *MatchService) Substitute(ctx context.Context, userID, matchID string, slot int, playerID string) ([]models.LineupSlot, error) {
	match, err := ms.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != volleyball.StatusLive {
		return nil, ErrMatchStateConflict
	}
	if !volleyball.ValidSlot(slot) {
		return nil, invalid("slot %d out of range %d-%d", slot, volleyball.MinSlot, volleyball.MaxSlot)
	}

	player, err := ms.playerStore.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("service failed to resolve substitute: %w", err)
	}
	if player.TeamID != match.TeamID {
		return nil, invalid("player %s is not on the match's team", playerID)
	}
	if onCourt, err := ms.lineupStore.FindSlotByPlayer(ctx, matchID, playerID); err == nil {
		return nil, invalid("player %s already stands in slot %d", playerID, onCourt.Slot)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("service failed to check court for substitute: %w", err)
	}

	if err := ms.lineupStore.UpdateSlot(ctx, matchID, slot, playerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("service failed to substitute: %w", err)
	}
	return ms.lineupStore.GetLineup(ctx, matchID)
}
