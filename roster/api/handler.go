// roster/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Renan-Rosa/rally-scout/roster/service"
	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/auth"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"github.com/gorilla/mux"
)

// RosterAPIHandlers holds references to the services that handle business logic.
type RosterAPIHandlers struct {
	TeamService   *service.TeamService
	PlayerService *service.PlayerService
	MatchService  *service.MatchService
	StatsService  *service.StatsService
}

// NewRosterAPIHandlers is the constructor for the roster API handlers.
func NewRosterAPIHandlers(ts *service.TeamService, ps *service.PlayerService, ms *service.MatchService, ss *service.StatsService) *RosterAPIHandlers {
	return &RosterAPIHandlers{
		TeamService:   ts,
		PlayerService: ps,
		MatchService:  ms,
		StatsService:  ss,
	}
}

// --- Request/Response DTOs ---

type TeamRequest struct {
	Name     string                  `json:"name"`
	Category volleyball.TeamCategory `json:"category"`
}

type PlayerRequest struct {
	TeamID   string              `json:"teamId"`
	Name     string              `json:"name"`
	Number   int                 `json:"number"`
	Position volleyball.Position `json:"position"`
	Active   *bool               `json:"active"`
}

type MatchRequest struct {
	TeamID   string    `json:"teamId"`
	Opponent string    `json:"opponent"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}

type RecordActionRequest struct {
	PlayerID        string                  `json:"playerId"`
	Type            volleyball.ActionType   `json:"type"`
	Result          volleyball.ActionResult `json:"result"`
	IsOpponentPoint bool                    `json:"isOpponentPoint"`
}

type LineupRequest struct {
	// Slots maps court slot (1-6, as string keys per JSON) to player ID.
	Slots map[int]string `json:"slots"`
}

type SubstitutionRequest struct {
	Slot     int    `json:"slot"`
	PlayerID string `json:"playerId"`
}

type MatchDetailResponse struct {
	Match  *models.Match       `json:"match"`
	Lineup []models.LineupSlot `json:"lineup"`
}

type ActionResponse struct {
	Action *models.Action `json:"action"`
	Match  *models.Match  `json:"match"`
}

// writeServiceError maps service-layer errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		api.WriteBadRequest(w, err.Error())
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrSlotNotFound):
		api.WriteNotFound(w, err.Error())
	case errors.Is(err, service.ErrMatchStateConflict),
		errors.Is(err, service.ErrLiveMatchExists),
		errors.Is(err, service.ErrLineupRequired),
		errors.Is(err, service.ErrNothingToUndo):
		api.WriteConflict(w, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		api.WriteUnauthorized(w, "Authentication required")
	default:
		log.Printf("Error during %s: %v", operation, err)
		api.WriteInternalServerError(w, fmt.Sprintf("Failed to %s", operation))
	}
}

// --- Team Handlers ---

// CreateTeamHandler handles requests to create a new team.
// POST /teams
func (rah *RosterAPIHandlers) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	team, err := rah.TeamService.CreateTeam(ctx, userID, req.Name, req.Category)
	if err != nil {
		writeServiceError(w, "create team", err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, team)
	log.Printf("Team %s created for user %s.", team.ID, userID)
}

// ListTeamsHandler handles requests to list the caller's teams.
// GET /teams
func (rah *RosterAPIHandlers) ListTeamsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teams, err := rah.TeamService.ListTeams(ctx, userID)
	if err != nil {
		writeServiceError(w, "list teams", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, teams)
}

// GetTeamHandler handles requests to retrieve one team.
// GET /teams/{teamId}
func (rah *RosterAPIHandlers) GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	team, err := rah.TeamService.GetTeam(ctx, userID, teamID)
	if err != nil {
		writeServiceError(w, "get team", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, team)
}

// UpdateTeamHandler handles requests to rename or recategorize a team.
// PUT /teams/{teamId}
func (rah *RosterAPIHandlers) UpdateTeamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	teamID := mux.Vars(r)["teamId"]

	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	team, err := rah.TeamService.UpdateTeam(ctx, userID, teamID, req.Name, req.Category)
	if err != nil {
		writeServiceError(w, "update team", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, team)
}

// DeleteTeamHandler handles requests to delete a team and everything under it.
// DELETE /teams/{teamId}
func (rah *RosterAPIHandlers) DeleteTeamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	teamID := mux.Vars(r)["teamId"]

	// Longer timeout: the cascading delete touches five collections.
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := rah.TeamService.DeleteTeam(ctx, userID, teamID); err != nil {
		writeServiceError(w, "delete team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	log.Printf("Team %s deleted for user %s.", teamID, userID)
}

// TeamStatsHandler handles requests for a team's aggregated stats page.
// GET /teams/{teamId}/stats
func (rah *RosterAPIHandlers) TeamStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := rah.StatsService.TeamStats(ctx, userID, teamID)
	if err != nil {
		writeServiceError(w, "compute team stats", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}

// --- Player Handlers ---

// CreatePlayerHandler handles requests to add a player to a roster.
// POST /players
func (rah *RosterAPIHandlers) CreatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.TeamID == "" {
		api.WriteBadRequest(w, "Team ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	player, err := rah.PlayerService.CreatePlayer(ctx, userID, req.TeamID, req.Name, req.Number, req.Position)
	if err != nil {
		writeServiceError(w, "create player", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, player)
	log.Printf("Player %s created on team %s.", player.ID, req.TeamID)
}

// ListPlayersHandler handles requests to list a team's roster.
// GET /teams/{teamId}/players
func (rah *RosterAPIHandlers) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	players, err := rah.PlayerService.ListPlayers(ctx, userID, teamID)
	if err != nil {
		writeServiceError(w, "list players", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, players)
}

// GetPlayerHandler handles requests to retrieve one player.
// GET /players/{playerId}
func (rah *RosterAPIHandlers) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	playerID := mux.Vars(r)["playerId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	player, err := rah.PlayerService.GetPlayer(ctx, userID, playerID)
	if err != nil {
		writeServiceError(w, "get player", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, player)
}

// UpdatePlayerHandler handles requests to edit a player.
// PUT /players/{playerId}
func (rah *RosterAPIHandlers) UpdatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	playerID := mux.Vars(r)["playerId"]

	var req PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	updated := &models.Player{
		ID:       playerID,
		Name:     req.Name,
		Number:   req.Number,
		Position: req.Position,
		Active:   active,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	player, err := rah.PlayerService.UpdatePlayer(ctx, userID, updated)
	if err != nil {
		writeServiceError(w, "update player", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, player)
}

// DeletePlayerHandler handles requests to remove a player from the roster.
// DELETE /players/{playerId}
func (rah *RosterAPIHandlers) DeletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	playerID := mux.Vars(r)["playerId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := rah.PlayerService.DeletePlayer(ctx, userID, playerID); err != nil {
		writeServiceError(w, "delete player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlayerStatsHandler handles requests for a player's efficiency report.
// GET /players/{playerId}/stats
func (rah *RosterAPIHandlers) PlayerStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	playerID := mux.Vars(r)["playerId"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := rah.PlayerService.PlayerStats(ctx, userID, playerID)
	if err != nil {
		writeServiceError(w, "compute player stats", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}

// --- Match Handlers ---

// CreateMatchHandler handles requests to schedule a fixture.
// POST /matches
func (rah *RosterAPIHandlers) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.TeamID == "" {
		api.WriteBadRequest(w, "Team ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	match, err := rah.MatchService.CreateMatch(ctx, userID, req.TeamID, req.Opponent, req.Location, req.Date)
	if err != nil {
		writeServiceError(w, "create match", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, match)
	log.Printf("Match %s scheduled for team %s.", match.ID, req.TeamID)
}

// ListMatchesHandler handles requests to list a team's fixtures.
// GET /teams/{teamId}/matches
func (rah *RosterAPIHandlers) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matches, err := rah.MatchService.ListMatches(ctx, userID, teamID)
	if err != nil {
		writeServiceError(w, "list matches", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, matches)
}

// GetMatchHandler handles requests to retrieve one match with its lineup.
// GET /matches/{matchId}
func (rah *RosterAPIHandlers) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	match, lineup, err := rah.MatchService.GetMatch(ctx, userID, matchID)
	if err != nil {
		writeServiceError(w, "get match", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, MatchDetailResponse{Match: match, Lineup: lineup})
}

// UpdateMatchHandler handles requests to reschedule a fixture.
// PUT /matches/{matchId}
func (rah *RosterAPIHandlers) UpdateMatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	match, err := rah.MatchService.UpdateMatch(ctx, userID, matchID, req.Opponent, req.Location, req.Date)
	if err != nil {
		writeServiceError(w, "update match", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, match)
}

// DeleteMatchHandler handles requests to remove a fixture.
// DELETE /matches/{matchId}
func (rah *RosterAPIHandlers) DeleteMatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := rah.MatchService.DeleteMatch(ctx, userID, matchID); err != nil {
		writeServiceError(w, "delete match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartMatchHandler handles requests to go live with a scheduled match.
// POST /matches/{matchId}/start
func (rah *RosterAPIHandlers) StartMatchHandler(w http.ResponseWriter, r *http.Request) {
	rah.lifecycleHandler(w, r, "start match", rah.MatchService.StartMatch)
}

// AdvanceSetHandler handles requests to close the current set.
// POST /matches/{matchId}/advance-set
func (rah *RosterAPIHandlers) AdvanceSetHandler(w http.ResponseWriter, r *http.Request) {
	rah.lifecycleHandler(w, r, "advance set", rah.MatchService.AdvanceSet)
}

// FinishMatchHandler handles requests to finish a live match.
// POST /matches/{matchId}/finish
func (rah *RosterAPIHandlers) FinishMatchHandler(w http.ResponseWriter, r *http.Request) {
	rah.lifecycleHandler(w, r, "finish match", rah.MatchService.FinishMatch)
}

// CancelMatchHandler handles requests to cancel a match.
// POST /matches/{matchId}/cancel
func (rah *RosterAPIHandlers) CancelMatchHandler(w http.ResponseWriter, r *http.Request) {
	rah.lifecycleHandler(w, r, "cancel match", rah.MatchService.CancelMatch)
}

// lifecycleHandler is the shared shape of the four status transitions.
func (rah *RosterAPIHandlers) lifecycleHandler(w http.ResponseWriter, r *http.Request, operation string, fn func(context.Context, string, string) (*models.Match, error)) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	match, err := fn(ctx, userID, matchID)
	if err != nil {
		writeServiceError(w, operation, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, match)
	log.Printf("Match %s: %s by user %s.", matchID, operation, userID)
}

// --- Action Handlers ---

// RecordActionHandler handles requests to append a scouted event.
// POST /matches/{matchId}/actions
func (rah *RosterAPIHandlers) RecordActionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	var req RecordActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	action, match, err := rah.MatchService.RecordAction(ctx, userID, matchID, req.PlayerID, req.Type, req.Result, req.IsOpponentPoint)
	if err != nil {
		writeServiceError(w, "record action", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, ActionResponse{Action: action, Match: match})
}

// RecordOpponentErrorHandler handles the one-tap opponent error shortcut.
// POST /matches/{matchId}/opponent-error
func (rah *RosterAPIHandlers) RecordOpponentErrorHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	action, match, err := rah.MatchService.RecordOpponentError(ctx, userID, matchID)
	if err != nil {
		writeServiceError(w, "record opponent error", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, ActionResponse{Action: action, Match: match})
}

// UndoLastActionHandler handles requests to undo the most recent ledger entry.
// POST /matches/{matchId}/undo
func (rah *RosterAPIHandlers) UndoLastActionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	undone, match, err := rah.MatchService.UndoLast(ctx, userID, matchID)
	if err != nil {
		writeServiceError(w, "undo last action", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ActionResponse{Action: undone, Match: match})
}

// ListActionsHandler handles requests for a match's full ledger.
// GET /matches/{matchId}/actions
func (rah *RosterAPIHandlers) ListActionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actions, err := rah.MatchService.ListActions(ctx, userID, matchID)
	if err != nil {
		writeServiceError(w, "list actions", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, actions)
}

// --- Lineup Handlers ---

// SaveLineupHandler handles requests to assign players to court slots.
// PUT /matches/{matchId}/lineup
func (rah *RosterAPIHandlers) SaveLineupHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	var req LineupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lineup, err := rah.MatchService.SaveLineup(ctx, userID, matchID, req.Slots)
	if err != nil {
		writeServiceError(w, "save lineup", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, lineup)
}

// RotateLineupHandler handles requests to rotate the lineup one position.
// POST /matches/{matchId}/rotate
func (rah *RosterAPIHandlers) RotateLineupHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lineup, err := rah.MatchService.Rotate(ctx, userID, matchID)
	if err != nil {
		writeServiceError(w, "rotate lineup", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, lineup)
}

// SubstituteHandler handles requests to swap a court player for a bench player.
// POST /matches/{matchId}/substitute
func (rah *RosterAPIHandlers) SubstituteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	var req SubstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		api.WriteBadRequest(w, "Player ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lineup, err := rah.MatchService.Substitute(ctx, userID, matchID, req.Slot, req.PlayerID)
	if err != nil {
		writeServiceError(w, "substitute player", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, lineup)
}

// --- Dashboard Handler ---

// DashboardHandler handles requests for the cross-team landing page summary.
// GET /dashboard
func (rah *RosterAPIHandlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := rah.StatsService.Dashboard(ctx, userID)
	if err != nil {
		writeServiceError(w, "compute dashboard", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}

// RegisterRoutes registers all API endpoints for the Roster Service.
// This method is called from main.go to set up the HTTP routes.
func (rah *RosterAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.Use(auth.Middleware)

	router.HandleFunc("/teams", rah.CreateTeamHandler).Methods("POST")
	router.HandleFunc("/teams", rah.ListTeamsHandler).Methods("GET")
	router.HandleFunc("/teams/{teamId}", rah.GetTeamHandler).Methods("GET")
	router.HandleFunc("/teams/{teamId}", rah.UpdateTeamHandler).Methods("PUT")
	router.HandleFunc("/teams/{teamId}", rah.DeleteTeamHandler).Methods("DELETE")
	router.HandleFunc("/teams/{teamId}/stats", rah.TeamStatsHandler).Methods("GET")
	router.HandleFunc("/teams/{teamId}/players", rah.ListPlayersHandler).Methods("GET")
	router.HandleFunc("/teams/{teamId}/matches", rah.ListMatchesHandler).Methods("GET")

	router.HandleFunc("/players", rah.CreatePlayerHandler).Methods("POST")
	router.HandleFunc("/players/{playerId}", rah.GetPlayerHandler).Methods("GET")
	router.HandleFunc("/players/{playerId}", rah.UpdatePlayerHandler).Methods("PUT")
	router.HandleFunc("/players/{playerId}", rah.DeletePlayerHandler).Methods("DELETE")
	router.HandleFunc("/players/{playerId}/stats", rah.PlayerStatsHandler).Methods("GET")

	router.HandleFunc("/matches", rah.CreateMatchHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}", rah.GetMatchHandler).Methods("GET")
	router.HandleFunc("/matches/{matchId}", rah.UpdateMatchHandler).Methods("PUT")
	router.HandleFunc("/matches/{matchId}", rah.DeleteMatchHandler).Methods("DELETE")
	router.HandleFunc("/matches/{matchId}/start", rah.StartMatchHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/advance-set", rah.AdvanceSetHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/finish", rah.FinishMatchHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/cancel", rah.CancelMatchHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/actions", rah.RecordActionHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/actions", rah.ListActionsHandler).Methods("GET")
	router.HandleFunc("/matches/{matchId}/opponent-error", rah.RecordOpponentErrorHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/undo", rah.UndoLastActionHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/lineup", rah.SaveLineupHandler).Methods("PUT")
	router.HandleFunc("/matches/{matchId}/rotate", rah.RotateLineupHandler).Methods("POST")
	router.HandleFunc("/matches/{matchId}/substitute", rah.SubstituteHandler).Methods("POST")

	router.HandleFunc("/dashboard", rah.DashboardHandler).Methods("GET")
}
