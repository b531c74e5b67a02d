// scout/service/scout_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Renan-Rosa/rally-scout/scout/session"
	"github.com/Renan-Rosa/rally-scout/scout/store"
	sharedservice "github.com/Renan-Rosa/rally-scout/shared/service"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// Custom errors for clear communication to the API layer.
var (
	ErrSessionNotFound     = fmt.Errorf("no open session for match")
	ErrSessionOwnedByOther = fmt.Errorf("match session is held by another user")
)

// ScoutService manages the live scouting sessions held by this instance. One
// session per match; every mutation goes through the session's optimistic
// apply-then-confirm path, and every successful mutation refreshes the
// published scoreboard snapshot.
type ScoutService struct {
	rosterClient *sharedservice.RosterServiceClient
	boards       *store.ScoreboardStore
	instanceID   string

	mu       sync.RWMutex
	sessions map[string]*session.LiveSession
}

// NewScoutService creates a new ScoutService instance.
func NewScoutService(rosterClient *sharedservice.RosterServiceClient, boards *store.ScoreboardStore, instanceID string) *ScoutService {
	return &ScoutService{
		rosterClient: rosterClient,
		boards:       boards,
		instanceID:   instanceID,
		sessions:     make(map[string]*session.LiveSession),
	}
}

// OpenSession opens (or re-joins) the live session for a match. The match
// must be LIVE on the roster service and owned by the calling user.
func (ss *ScoutService) OpenSession(ctx context.Context, userID, matchID string) (*session.LiveSession, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if existing, ok := ss.sessions[matchID]; ok {
		if existing.UserID != userID {
			return nil, ErrSessionOwnedByOther
		}
		return existing, nil
	}

	ls, err := session.Open(ctx, ss.rosterClient.ForUser(userID), userID, matchID)
	if err != nil {
		return nil, err
	}
	ss.sessions[matchID] = ls

	if err := ss.boards.MarkSessionOpen(ctx, matchID, ss.instanceID); err != nil {
		log.Printf("WARNING: Failed to mark session open for match %s: %v", matchID, err)
	}
	ss.publish(ctx, ls)

	log.Printf("INFO: Session opened for match %s by user %s.", matchID, userID)
	return ls, nil
}

// CloseSession drops the session for a match. The published scoreboard stays
// until its TTL so the final score remains readable for a while.
func (ss *ScoutService) CloseSession(ctx context.Context, userID, matchID string) error {
	ss.mu.Lock()
	ls, ok := ss.sessions[matchID]
	if ok && ls.UserID != userID {
		ss.mu.Unlock()
		return ErrSessionOwnedByOther
	}
	delete(ss.sessions, matchID)
	ss.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	if err := ss.boards.MarkSessionClosed(ctx, matchID); err != nil {
		log.Printf("WARNING: Failed to mark session closed for match %s: %v", matchID, err)
	}
	log.Printf("INFO: Session closed for match %s by user %s.", matchID, userID)
	return nil
}

// Session returns the open session for a match, if this user holds it.
func (ss *ScoutService) Session(userID, matchID string) (*session.LiveSession, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	ls, ok := ss.sessions[matchID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ls.UserID != userID {
		return nil, ErrSessionOwnedByOther
	}
	return ls, nil
}

// Sessions snapshots the sessions currently held by this instance. The
// reconciler iterates this without holding the service lock.
func (ss *ScoutService) Sessions() []*session.LiveSession {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	out := make([]*session.LiveSession, 0, len(ss.sessions))
	for _, ls := range ss.sessions {
		out = append(out, ls)
	}
	return out
}

// Record appends one scouted event through the session.
func (ss *ScoutService) Record(ctx context.Context, userID, matchID, playerID string, actionType volleyball.ActionType, result volleyball.ActionResult, isOpponentPoint bool) (*session.EventResult, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	action, match, err := ls.Record(ctx, playerID, actionType, result, isOpponentPoint)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, ls)
	return &session.EventResult{Action: action, Match: match}, nil
}

// RecordOpponentError records the one-tap opponent mistake.
func (ss *ScoutService) RecordOpponentError(ctx context.Context, userID, matchID string) (*session.EventResult, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	action, match, err := ls.RecordOpponentError(ctx)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, ls)
	return &session.EventResult{Action: action, Match: match}, nil
}

// Undo reverses the most recent ledger entry.
func (ss *ScoutService) Undo(ctx context.Context, userID, matchID string) (*session.EventResult, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	action, match, err := ls.Undo(ctx)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, ls)
	return &session.EventResult{Action: action, Match: match}, nil
}

// SaveLineup assigns players to court slots through the session.
func (ss *ScoutService) SaveLineup(ctx context.Context, userID, matchID string, slots map[int]string) (map[int]string, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	return ls.SaveLineup(ctx, slots)
}

// Rotate advances the lineup one position.
func (ss *ScoutService) Rotate(ctx context.Context, userID, matchID string) (map[int]string, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	return ls.Rotate(ctx)
}

// Substitute swaps a court player for a bench player.
func (ss *ScoutService) Substitute(ctx context.Context, userID, matchID string, slot int, playerID string) (map[int]string, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	return ls.Substitute(ctx, slot, playerID)
}

// AdvanceSet closes the current set through the session.
func (ss *ScoutService) AdvanceSet(ctx context.Context, userID, matchID string) (*session.EventResult, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	match, err := ls.AdvanceSet(ctx)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, ls)
	return &session.EventResult{Match: match}, nil
}

// Finish ends the match and closes its session. The final snapshot stays
// published until the TTL runs out.
func (ss *ScoutService) Finish(ctx context.Context, userID, matchID string) (*session.EventResult, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	match, err := ls.Finish(ctx)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, ls)
	if err := ss.CloseSession(ctx, userID, matchID); err != nil {
		log.Printf("WARNING: Failed to close session after finishing match %s: %v", matchID, err)
	}
	return &session.EventResult{Match: match}, nil
}

// Cancel abandons the match and closes its session.
func (ss *ScoutService) Cancel(ctx context.Context, userID, matchID string) (*session.EventResult, error) {
	ls, err := ss.Session(userID, matchID)
	if err != nil {
		return nil, err
	}
	match, err := ls.Cancel(ctx)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, ls)
	if err := ss.CloseSession(ctx, userID, matchID); err != nil {
		log.Printf("WARNING: Failed to close session after canceling match %s: %v", matchID, err)
	}
	return &session.EventResult{Match: match}, nil
}

// Scoreboard reads the published snapshot for a match. Works on any instance,
// whether or not it holds the session.
func (ss *ScoutService) Scoreboard(ctx context.Context, matchID string) (*session.Scoreboard, error) {
	return ss.boards.GetScoreboard(ctx, matchID)
}

// publish pushes the session's current snapshot to Redis. Publishing is
// best-effort; the durable state already lives in the roster service and the
// reconciler repairs missed snapshots.
func (ss *ScoutService) publish(ctx context.Context, ls *session.LiveSession) {
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := ss.boards.SaveScoreboard(pubCtx, ls.Snapshot()); err != nil {
		log.Printf("WARNING: Failed to publish scoreboard for match %s: %v", ls.MatchID, err)
	}
}
