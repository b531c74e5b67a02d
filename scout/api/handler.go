// scout/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Renan-Rosa/rally-scout/scout/service"
	"github.com/Renan-Rosa/rally-scout/scout/session"
	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/auth"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	redisu "github.com/Renan-Rosa/rally-scout/shared/redis"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"github.com/gorilla/mux"
)

// ScoutAPIHandlers holds a reference to the scout service.
type ScoutAPIHandlers struct {
	ScoutService *service.ScoutService
}

// NewScoutAPIHandlers is the constructor for the scout API handlers.
func NewScoutAPIHandlers(ss *service.ScoutService) *ScoutAPIHandlers {
	return &ScoutAPIHandlers{ScoutService: ss}
}

// --- Request/Response DTOs ---

type RecordActionRequest struct {
	PlayerID        string                  `json:"playerId"`
	Type            volleyball.ActionType   `json:"type"`
	Result          volleyball.ActionResult `json:"result"`
	IsOpponentPoint bool                    `json:"isOpponentPoint"`
}

type LineupRequest struct {
	Slots map[int]string `json:"slots"`
}

type SubstitutionRequest struct {
	Slot     int    `json:"slot"`
	PlayerID string `json:"playerId"`
}

type SessionResponse struct {
	Match  models.Match   `json:"match"`
	Lineup map[int]string `json:"lineup"`
}

// writeScoutError maps session, service and gateway errors onto HTTP statuses.
func writeScoutError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidAction),
		errors.Is(err, session.ErrNoLineup),
		errors.Is(err, api.ErrBadRequest):
		api.WriteBadRequest(w, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, api.ErrNotFound),
		errors.Is(err, redisu.ErrRedisKeyNotFound):
		api.WriteNotFound(w, err.Error())
	case errors.Is(err, session.ErrMatchNotLive),
		errors.Is(err, service.ErrSessionOwnedByOther),
		errors.Is(err, api.ErrConflict):
		api.WriteConflict(w, err.Error())
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, auth.ErrUnauthenticated):
		api.WriteUnauthorized(w, "Authentication required")
	default:
		log.Printf("Error during %s: %v", operation, err)
		api.WriteInternalServerError(w, fmt.Sprintf("Failed to %s", operation))
	}
}

// sessionHandler is the shared shape of the handlers that resolve user and
// match, run one session operation and answer with the event result.
func (sah *ScoutAPIHandlers) sessionHandler(w http.ResponseWriter, r *http.Request, operation string, status int, fn func(ctx context.Context, userID, matchID string) (*session.EventResult, error)) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := fn(ctx, userID, matchID)
	if err != nil {
		writeScoutError(w, operation, err)
		return
	}
	api.WriteJSON(w, status, result)
}

// --- Session Handlers ---

// OpenSessionHandler opens (or re-joins) the live session for a match.
// POST /sessions/{matchId}
func (sah *ScoutAPIHandlers) OpenSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ls, err := sah.ScoutService.OpenSession(ctx, userID, matchID)
	if err != nil {
		writeScoutError(w, "open session", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, SessionResponse{Match: ls.Match(), Lineup: ls.Lineup()})
}

// GetSessionHandler returns the in-memory state of an open session.
// GET /sessions/{matchId}
func (sah *ScoutAPIHandlers) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ls, err := sah.ScoutService.Session(userID, matchID)
	if err != nil {
		writeScoutError(w, "get session", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, SessionResponse{Match: ls.Match(), Lineup: ls.Lineup()})
}

// CloseSessionHandler drops an open session without touching the match.
// DELETE /sessions/{matchId}
func (sah *ScoutAPIHandlers) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := sah.ScoutService.CloseSession(ctx, userID, matchID); err != nil {
		writeScoutError(w, "close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Event Handlers ---

// RecordActionHandler appends one scouted event through the session.
// POST /sessions/{matchId}/actions
func (sah *ScoutAPIHandlers) RecordActionHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	sah.sessionHandler(w, r, "record action", http.StatusCreated, func(ctx context.Context, userID, matchID string) (*session.EventResult, error) {
		return sah.ScoutService.Record(ctx, userID, matchID, req.PlayerID, req.Type, req.Result, req.IsOpponentPoint)
	})
}

// RecordOpponentErrorHandler is the one-tap opponent mistake shortcut.
// POST /sessions/{matchId}/opponent-error
func (sah *ScoutAPIHandlers) RecordOpponentErrorHandler(w http.ResponseWriter, r *http.Request) {
	sah.sessionHandler(w, r, "record opponent error", http.StatusCreated, sah.ScoutService.RecordOpponentError)
}

// UndoHandler reverses the most recent ledger entry.
// POST /sessions/{matchId}/undo
func (sah *ScoutAPIHandlers) UndoHandler(w http.ResponseWriter, r *http.Request) {
	sah.sessionHandler(w, r, "undo last action", http.StatusOK, sah.ScoutService.Undo)
}

// AdvanceSetHandler closes the current set.
// POST /sessions/{matchId}/advance-set
func (sah *ScoutAPIHandlers) AdvanceSetHandler(w http.ResponseWriter, r *http.Request) {
	sah.sessionHandler(w, r, "advance set", http.StatusOK, sah.ScoutService.AdvanceSet)
}

// FinishHandler ends the match and closes the session.
// POST /sessions/{matchId}/finish
func (sah *ScoutAPIHandlers) FinishHandler(w http.ResponseWriter, r *http.Request) {
	sah.sessionHandler(w, r, "finish match", http.StatusOK, sah.ScoutService.Finish)
}

// CancelHandler abandons the match and closes the session.
// POST /sessions/{matchId}/cancel
func (sah *ScoutAPIHandlers) CancelHandler(w http.ResponseWriter, r *http.Request) {
	sah.sessionHandler(w, r, "cancel match", http.StatusOK, sah.ScoutService.Cancel)
}

// --- Lineup Handlers ---

// lineupHandler is the shared shape of the lineup-returning operations.
func (sah *ScoutAPIHandlers) lineupHandler(w http.ResponseWriter, r *http.Request, operation string, fn func(ctx context.Context, userID, matchID string) (map[int]string, error)) {
	userID, err := auth.CurrentUser(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "Authentication required")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lineup, err := fn(ctx, userID, matchID)
	if err != nil {
		writeScoutError(w, operation, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, lineup)
}

// SaveLineupHandler assigns players to court slots.
// PUT /sessions/{matchId}/lineup
func (sah *ScoutAPIHandlers) SaveLineupHandler(w http.ResponseWriter, r *http.Request) {
	var req LineupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	sah.lineupHandler(w, r, "save lineup", func(ctx context.Context, userID, matchID string) (map[int]string, error) {
		return sah.ScoutService.SaveLineup(ctx, userID, matchID, req.Slots)
	})
}

// RotateHandler advances the lineup one position.
// POST /sessions/{matchId}/rotate
func (sah *ScoutAPIHandlers) RotateHandler(w http.ResponseWriter, r *http.Request) {
	sah.lineupHandler(w, r, "rotate lineup", sah.ScoutService.Rotate)
}

// SubstituteHandler swaps a court player for a bench player.
// POST /sessions/{matchId}/substitute
func (sah *ScoutAPIHandlers) SubstituteHandler(w http.ResponseWriter, r *http.Request) {
	var req SubstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		api.WriteBadRequest(w, "Player ID is required")
		return
	}
	sah.lineupHandler(w, r, "substitute player", func(ctx context.Context, userID, matchID string) (map[int]string, error) {
		return sah.ScoutService.Substitute(ctx, userID, matchID, req.Slot, req.PlayerID)
	})
}

// --- Scoreboard Handler ---

// ScoreboardHandler serves the published snapshot of a match. Spectator read,
// no authentication.
// GET /scoreboards/{matchId}
func (sah *ScoutAPIHandlers) ScoreboardHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	board, err := sah.ScoutService.Scoreboard(ctx, matchID)
	if err != nil {
		writeScoutError(w, "get scoreboard", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, board)
}

// RegisterRoutes registers all API endpoints for the Scout Service.
// This method is called from main.go to set up the HTTP routes.
func (sah *ScoutAPIHandlers) RegisterRoutes(router *mux.Router) {
	// Scoreboard reads are public; everything else requires a user.
	router.HandleFunc("/scoreboards/{matchId}", sah.ScoreboardHandler).Methods("GET")

	sessions := router.PathPrefix("/sessions").Subrouter()
	sessions.Use(auth.Middleware)
	sessions.HandleFunc("/{matchId}", sah.OpenSessionHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}", sah.GetSessionHandler).Methods("GET")
	sessions.HandleFunc("/{matchId}", sah.CloseSessionHandler).Methods("DELETE")
	sessions.HandleFunc("/{matchId}/actions", sah.RecordActionHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/opponent-error", sah.RecordOpponentErrorHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/undo", sah.UndoHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/advance-set", sah.AdvanceSetHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/finish", sah.FinishHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/cancel", sah.CancelHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/lineup", sah.SaveLineupHandler).Methods("PUT")
	sessions.HandleFunc("/{matchId}/rotate", sah.RotateHandler).Methods("POST")
	sessions.HandleFunc("/{matchId}/substitute", sah.SubstituteHandler).Methods("POST")
}
