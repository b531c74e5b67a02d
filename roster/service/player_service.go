// roster/service/player_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Renan-Rosa/rally-scout/roster/store"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// PlayerService encapsulates the business logic for roster players and their
// aggregated performance numbers.
type PlayerService struct {
	playerStore *store.PlayerStore
	teamStore   *store.TeamStore
	actionStore *store.ActionStore
}

// NewPlayerService creates a new PlayerService instance.
func NewPlayerService(ps *store.PlayerStore, ts *store.TeamStore, as *store.ActionStore) *PlayerService {
	return &PlayerService{
		playerStore: ps,
		teamStore:   ts,
		actionStore: as,
	}
}

// CreatePlayer validates and persists a new player on one of the user's teams.
func (ps *PlayerService) CreatePlayer(ctx context.Context, userID, teamID, name string, number int, position volleyball.Position) (*models.Player, error) {
	if _, err := ps.teamStore.GetTeam(ctx, userID, teamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to resolve team: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("player name must not be empty")
	}
	if number < volleyball.MinShirtNumber || number > volleyball.MaxShirtNumber {
		return nil, invalid("shirt number %d out of range %d-%d", number, volleyball.MinShirtNumber, volleyball.MaxShirtNumber)
	}
	if !volleyball.ValidPosition(position) {
		return nil, invalid("unknown position %q", position)
	}

	now := time.Now()
	player := &models.Player{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		Name:      name,
		Number:    number,
		Position:  position,
		Active:    true,
		CreatedAt: &now,
	}

	if err := ps.playerStore.CreatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("service failed to create player: %w", err)
	}
	return player, nil
}

// GetPlayer retrieves a player, verifying the caller owns the player's team.
func (ps *PlayerService) GetPlayer(ctx context.Context, userID, playerID string) (*models.Player, error) {
	player, err := ps.playerStore.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("service failed to get player: %w", err)
	}

	if _, err := ps.teamStore.GetTeam(ctx, userID, player.TeamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The team exists but belongs to someone else. Same answer either way.
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("service failed to resolve player's team: %w", err)
	}
	return player, nil
}

// ListPlayers returns a team's roster.
func (ps *PlayerService) ListPlayers(ctx context.Context, userID, teamID string) ([]models.Player, error) {
	if _, err := ps.teamStore.GetTeam(ctx, userID, teamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to resolve team: %w", err)
	}

	players, err := ps.playerStore.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("service failed to list players: %w", err)
	}
	return players, nil
}

// UpdatePlayer changes a player's name, number, position or active flag.
func (ps *PlayerService) UpdatePlayer(ctx context.Context, userID string, updated *models.Player) (*models.Player, error) {
	player, err := ps.GetPlayer(ctx, userID, updated.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(updated.Name); name != "" {
		player.Name = name
	}
	if updated.Number != 0 {
		if updated.Number < volleyball.MinShirtNumber || updated.Number > volleyball.MaxShirtNumber {
			return nil, invalid("shirt number %d out of range %d-%d", updated.Number, volleyball.MinShirtNumber, volleyball.MaxShirtNumber)
		}
		player.Number = updated.Number
	}
	if updated.Position != "" {
		if !volleyball.ValidPosition(updated.Position) {
			return nil, invalid("unknown position %q", updated.Position)
		}
		player.Position = updated.Position
	}
	player.Active = updated.Active

	if err := ps.playerStore.UpdatePlayer(ctx, player); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("service failed to update player: %w", err)
	}
	return player, nil
}

// DeletePlayer removes a player from the roster. Ledger entries keep the
// player ID; historical stats outlive the roster row.
func (ps *PlayerService) DeletePlayer(ctx context.Context, userID, playerID string) error {
	if _, err := ps.GetPlayer(ctx, userID, playerID); err != nil {
		return err
	}
	if err := ps.playerStore.DeletePlayer(ctx, playerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("service failed to delete player: %w", err)
	}
	return nil
}

// ActionBreakdown is the per-action-type slice of a player's statistics.
type ActionBreakdown struct {
	Type       volleyball.ActionType           `json:"type"`
	Total      int                             `json:"total"`
	ByResult   map[volleyball.ActionResult]int `json:"byResult"`
	Efficiency int                             `json:"efficiency"`
}

// breakdownOrder is the fixed display order of the per-type statistics.
var breakdownOrder = []volleyball.ActionType{
	volleyball.ActionServe,
	volleyball.ActionReceive,
	volleyball.ActionAttack,
	volleyball.ActionBlock,
	volleyball.ActionDig,
	volleyball.ActionSet,
}

// buildBreakdown folds (type, result) aggregation buckets into the per-type
// report slices, the overall result tallies and the grand total. Types with no
// entries are omitted.
func buildBreakdown(counts []store.ResultCounts) ([]ActionBreakdown, map[volleyball.ActionResult]int, int) {
	byType := make(map[volleyball.ActionType]map[volleyball.ActionResult]int)
	overall := make(map[volleyball.ActionResult]int)
	total := 0
	for _, c := range counts {
		if byType[c.Type] == nil {
			byType[c.Type] = make(map[volleyball.ActionResult]int)
		}
		byType[c.Type][c.Result] += c.Count
		overall[c.Result] += c.Count
		total += c.Count
	}

	var breakdown []ActionBreakdown
	for _, t := range breakdownOrder {
		results, ok := byType[t]
		if !ok {
			continue
		}
		typeTotal := 0
		for _, n := range results {
			typeTotal += n
		}
		breakdown = append(breakdown, ActionBreakdown{
			Type:       t,
			Total:      typeTotal,
			ByResult:   results,
			Efficiency: volleyball.EfficiencyScore(results),
		})
	}
	return breakdown, overall, total
}

// PlayerStatsReport aggregates one player's recorded actions across every
// match they appear in.
type PlayerStatsReport struct {
	Player     *models.Player    `json:"player"`
	Matches    int               `json:"matches"`
	Total      int               `json:"totalActions"`
	Breakdown  []ActionBreakdown `json:"breakdown"`
	Efficiency int               `json:"efficiency"`
}

// PlayerStats computes a player's efficiency report. Only attributed entries
// count; opponent rows never carry this player's ID.
func (ps *PlayerService) PlayerStats(ctx context.Context, userID, playerID string) (*PlayerStatsReport, error) {
	player, err := ps.GetPlayer(ctx, userID, playerID)
	if err != nil {
		return nil, err
	}

	matchIDs, err := ps.actionStore.DistinctMatches(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("service failed to resolve player's matches: %w", err)
	}

	counts, err := ps.actionStore.CountByTypeResult(ctx, playerID, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("service failed to aggregate player actions: %w", err)
	}

	breakdown, overall, total := buildBreakdown(counts)
	return &PlayerStatsReport{
		Player:     player,
		Matches:    len(matchIDs),
		Total:      total,
		Breakdown:  breakdown,
		Efficiency: volleyball.EfficiencyScore(overall),
	}, nil
}
