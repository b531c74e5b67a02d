// roster/service/team_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Renan-Rosa/rally-scout/roster/store"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/mongodb"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// TeamService encapsulates the business logic for teams, including the
// cascading delete that keeps players, matches, lineups and ledgers from
// going orphaned.
type TeamService struct {
	mongoClient *mongodb.Client
	teamStore   *store.TeamStore
	playerStore *store.PlayerStore
	matchStore  *store.MatchStore
	lineupStore *store.LineupStore
	actionStore *store.ActionStore
}

// NewTeamService creates a new TeamService instance.
func NewTeamService(
	mongoClient *mongodb.Client,
	ts *store.TeamStore,
	ps *store.PlayerStore,
	ms *store.MatchStore,
	ls *store.LineupStore,
	as *store.ActionStore,
) *TeamService {
	return &TeamService{
		mongoClient: mongoClient,
		teamStore:   ts,
		playerStore: ps,
		matchStore:  ms,
		lineupStore: ls,
		actionStore: as,
	}
}

// CreateTeam validates and persists a new team owned by the given user.
func (ts *TeamService) CreateTeam(ctx context.Context, userID, name string, category volleyball.TeamCategory) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("team name must not be empty")
	}
	if !volleyball.ValidCategory(category) {
		return nil, invalid("unknown team category %q", category)
	}

	now := time.Now()
	team := &models.Team{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Category:  category,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	if err := ts.teamStore.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("service failed to create team: %w", err)
	}
	return team, nil
}

// GetTeam retrieves one of the user's teams.
func (ts *TeamService) GetTeam(ctx context.Context, userID, teamID string) (*models.Team, error) {
	team, err := ts.teamStore.GetTeam(ctx, userID, teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to get team: %w", err)
	}
	return team, nil
}

// ListTeams returns all teams owned by the user.
func (ts *TeamService) ListTeams(ctx context.Context, userID string) ([]models.Team, error) {
	teams, err := ts.teamStore.ListTeams(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service failed to list teams: %w", err)
	}
	return teams, nil
}

// UpdateTeam changes a team's name and/or category.
func (ts *TeamService) UpdateTeam(ctx context.Context, userID, teamID, name string, category volleyball.TeamCategory) (*models.Team, error) {
	team, err := ts.GetTeam(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		team.Name = name
	}
	if category != "" {
		if !volleyball.ValidCategory(category) {
			return nil, invalid("unknown team category %q", category)
		}
		team.Category = category
	}
	now := time.Now()
	team.UpdatedAt = &now

	if err := ts.teamStore.UpdateTeam(ctx, userID, team); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes a team and everything hanging off it: players, matches,
// their lineups and their action ledgers. All inside one transaction so a
// crash mid-delete cannot leave half a team behind.
func (ts *TeamService) DeleteTeam(ctx context.Context, userID, teamID string) error {
	// Ownership check up front; the transaction then operates by team ID.
	if _, err := ts.GetTeam(ctx, userID, teamID); err != nil {
		return err
	}

	_, err := ts.mongoClient.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		matchIDs, err := ts.matchStore.DeleteMatchesByTeam(sessCtx, teamID)
		if err != nil {
			return nil, err
		}
		if err := ts.actionStore.DeleteActionsByMatches(sessCtx, matchIDs); err != nil {
			return nil, err
		}
		if err := ts.lineupStore.DeleteLineupsByMatches(sessCtx, matchIDs); err != nil {
			return nil, err
		}
		if err := ts.playerStore.DeletePlayersByTeam(sessCtx, teamID); err != nil {
			return nil, err
		}
		if err := ts.teamStore.DeleteTeam(sessCtx, userID, teamID); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("service failed to delete team: %w", err)
	}
	return nil
}
