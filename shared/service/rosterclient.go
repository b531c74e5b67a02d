// shared/service/rosterclient.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// RosterServiceClient is a client for the Roster Service. The scout service
// uses it as the durable side of every live-session mutation: nothing is
// considered recorded until the roster service said so.
type RosterServiceClient struct {
	apiClient *api.Client
}

// NewRosterClient creates a new Roster Service client.
// It takes the base URL of the Roster Service as an argument.
func NewRosterClient(baseURL string) *RosterServiceClient {
	return &RosterServiceClient{
		apiClient: api.NewClient(baseURL, api.NewDefaultHTTPClient()),
	}
}

// ForUser returns a copy of the client acting on behalf of the given user, so
// the roster service applies its ownership scoping to every call.
func (c *RosterServiceClient) ForUser(userID string) *RosterServiceClient {
	return &RosterServiceClient{apiClient: c.apiClient.WithUser(userID)}
}

// --- Request/Response DTOs for Roster Service Communication ---
// These mirror the DTOs defined in roster/api/handlers.go for consistency.

// RecordActionRequest is the request body for appending one scouted event.
type RecordActionRequest struct {
	PlayerID        string                  `json:"playerId"`
	Type            volleyball.ActionType   `json:"type"`
	Result          volleyball.ActionResult `json:"result"`
	IsOpponentPoint bool                    `json:"isOpponentPoint"`
}

// LineupRequest is the request body for assigning players to court slots.
type LineupRequest struct {
	Slots map[int]string `json:"slots"`
}

// SubstitutionRequest is the request body for a substitution.
type SubstitutionRequest struct {
	Slot     int    `json:"slot"`
	PlayerID string `json:"playerId"`
}

// MatchDetailResponse is the match-plus-lineup payload of GET /matches/{id}.
type MatchDetailResponse struct {
	Match  *models.Match       `json:"match"`
	Lineup []models.LineupSlot `json:"lineup"`
}

// ActionResponse pairs a ledger entry with the match state after it applied.
type ActionResponse struct {
	Action *models.Action `json:"action"`
	Match  *models.Match  `json:"match"`
}

// MatchRequest is the request body for scheduling or editing a fixture.
type MatchRequest struct {
	TeamID   string    `json:"teamId"`
	Opponent string    `json:"opponent"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}

// --- Client Methods for Roster Service API Endpoints ---

// GetMatch fetches one match together with its current lineup.
// Returns api.ErrNotFound (wrapped) on HTTP 404.
func (c *RosterServiceClient) GetMatch(ctx context.Context, matchID string) (*MatchDetailResponse, error) {
	detail := &MatchDetailResponse{}
	if err := c.apiClient.Get(ctx, fmt.Sprintf("/matches/%s", matchID), detail); err != nil {
		return nil, fmt.Errorf("failed to get match %s from Roster Service: %w", matchID, err)
	}
	return detail, nil
}

// StartMatch transitions a scheduled match to LIVE.
func (c *RosterServiceClient) StartMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match := &models.Match{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/start", matchID), nil, match); err != nil {
		return nil, fmt.Errorf("failed to start match %s via Roster Service: %w", matchID, err)
	}
	return match, nil
}

// RecordAction appends one scouted event to a live match.
func (c *RosterServiceClient) RecordAction(ctx context.Context, matchID string, req RecordActionRequest) (*ActionResponse, error) {
	resp := &ActionResponse{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/actions", matchID), req, resp); err != nil {
		return nil, fmt.Errorf("failed to record action on match %s via Roster Service: %w", matchID, err)
	}
	return resp, nil
}

// RecordOpponentError records the one-tap "opponent gave us a point" event.
func (c *RosterServiceClient) RecordOpponentError(ctx context.Context, matchID string) (*ActionResponse, error) {
	resp := &ActionResponse{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/opponent-error", matchID), nil, resp); err != nil {
		return nil, fmt.Errorf("failed to record opponent error on match %s via Roster Service: %w", matchID, err)
	}
	return resp, nil
}

// UndoLastAction removes the most recent ledger entry of a live match.
// Returns api.ErrConflict (wrapped) when the ledger is empty.
func (c *RosterServiceClient) UndoLastAction(ctx context.Context, matchID string) (*ActionResponse, error) {
	resp := &ActionResponse{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/undo", matchID), nil, resp); err != nil {
		return nil, fmt.Errorf("failed to undo last action on match %s via Roster Service: %w", matchID, err)
	}
	return resp, nil
}

// SaveLineup writes slot assignments for a match.
func (c *RosterServiceClient) SaveLineup(ctx context.Context, matchID string, slots map[int]string) ([]models.LineupSlot, error) {
	var lineup []models.LineupSlot
	if err := c.apiClient.Put(ctx, fmt.Sprintf("/matches/%s/lineup", matchID), LineupRequest{Slots: slots}, &lineup); err != nil {
		return nil, fmt.Errorf("failed to save lineup of match %s via Roster Service: %w", matchID, err)
	}
	return lineup, nil
}

// RotateLineup advances the lineup one position.
func (c *RosterServiceClient) RotateLineup(ctx context.Context, matchID string) ([]models.LineupSlot, error) {
	var lineup []models.LineupSlot
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/rotate", matchID), nil, &lineup); err != nil {
		return nil, fmt.Errorf("failed to rotate lineup of match %s via Roster Service: %w", matchID, err)
	}
	return lineup, nil
}

// Substitute swaps the player in one slot for a bench player.
func (c *RosterServiceClient) Substitute(ctx context.Context, matchID string, slot int, playerID string) ([]models.LineupSlot, error) {
	var lineup []models.LineupSlot
	req := SubstitutionRequest{Slot: slot, PlayerID: playerID}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/substitute", matchID), req, &lineup); err != nil {
		return nil, fmt.Errorf("failed to substitute on match %s via Roster Service: %w", matchID, err)
	}
	return lineup, nil
}

// AdvanceSet closes the current set of a live match.
func (c *RosterServiceClient) AdvanceSet(ctx context.Context, matchID string) (*models.Match, error) {
	match := &models.Match{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/advance-set", matchID), nil, match); err != nil {
		return nil, fmt.Errorf("failed to advance set of match %s via Roster Service: %w", matchID, err)
	}
	return match, nil
}

// FinishMatch transitions a live match to FINISHED.
func (c *RosterServiceClient) FinishMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match := &models.Match{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/finish", matchID), nil, match); err != nil {
		return nil, fmt.Errorf("failed to finish match %s via Roster Service: %w", matchID, err)
	}
	return match, nil
}

// CancelMatch transitions a match to CANCELED.
func (c *RosterServiceClient) CancelMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match := &models.Match{}
	if err := c.apiClient.Post(ctx, fmt.Sprintf("/matches/%s/cancel", matchID), nil, match); err != nil {
		return nil, fmt.Errorf("failed to cancel match %s via Roster Service: %w", matchID, err)
	}
	return match, nil
}
