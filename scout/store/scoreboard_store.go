// scout/store/scoreboard_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Renan-Rosa/rally-scout/scout/session"
	redisu "github.com/Renan-Rosa/rally-scout/shared/redis"
	"github.com/redis/go-redis/v9"
)

// ScoreboardStore publishes live scoreboard snapshots to Redis so spectators
// read scores without touching the roster service, and marks which matches
// have an open scouting session. Keys carry a TTL; an abandoned session's
// scoreboard disappears on its own.
type ScoreboardStore struct {
	client *redis.ClusterClient
	ttl    time.Duration
}

// NewScoreboardStore creates and returns a new ScoreboardStore instance.
func NewScoreboardStore(client *redis.ClusterClient, ttl time.Duration) *ScoreboardStore {
	return &ScoreboardStore{
		client: client,
		ttl:    ttl,
	}
}

// SaveScoreboard writes one match's snapshot, refreshing its TTL.
func (ss *ScoreboardStore) SaveScoreboard(ctx context.Context, board session.Scoreboard) error {
	key := fmt.Sprintf(redisu.ScoreboardKeyPrefix, board.MatchID)

	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to marshal scoreboard for match %s: %w", board.MatchID, err)
	}
	if err := ss.client.Set(ctx, key, data, ss.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save scoreboard for match %s in Redis: %w", board.MatchID, err)
	}
	return nil
}

// GetScoreboard reads one match's snapshot. Returns redisu.ErrRedisKeyNotFound
// (wrapped) when no live scoreboard exists for the match.
func (ss *ScoreboardStore) GetScoreboard(ctx context.Context, matchID string) (*session.Scoreboard, error) {
	key := fmt.Sprintf(redisu.ScoreboardKeyPrefix, matchID)

	val, err := ss.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("no scoreboard for match %s: %w", matchID, redisu.ErrRedisKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scoreboard for match %s from Redis: %w", matchID, err)
	}

	var board session.Scoreboard
	if err := json.Unmarshal([]byte(val), &board); err != nil {
		return nil, fmt.Errorf("invalid scoreboard payload for match %s in Redis: %w", matchID, err)
	}
	return &board, nil
}

// DeleteScoreboard removes a match's snapshot, normally when its session
// closes on a finished or canceled match.
func (ss *ScoreboardStore) DeleteScoreboard(ctx context.Context, matchID string) error {
	key := fmt.Sprintf(redisu.ScoreboardKeyPrefix, matchID)
	if err := ss.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete scoreboard for match %s from Redis: %w", matchID, err)
	}
	return nil
}

// MarkSessionOpen records that a scout instance holds an open session for the
// match. The TTL doubles as a liveness bound: a crashed instance's marker
// expires instead of pinning the match forever.
func (ss *ScoreboardStore) MarkSessionOpen(ctx context.Context, matchID, instanceID string) error {
	key := fmt.Sprintf(redisu.OpenSessionKeyPrefix, matchID)
	if err := ss.client.Set(ctx, key, instanceID, ss.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark session open for match %s in Redis: %w", matchID, err)
	}
	return nil
}

// MarkSessionClosed removes the open-session marker for a match.
func (ss *ScoreboardStore) MarkSessionClosed(ctx context.Context, matchID string) error {
	key := fmt.Sprintf(redisu.OpenSessionKeyPrefix, matchID)
	if err := ss.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to mark session closed for match %s in Redis: %w", matchID, err)
	}
	return nil
}

// GetOpenSessions retrieves all matches with an open session, mapped to the
// instance holding each one. In a Redis Cluster this means scanning every
// master node.
func (ss *ScoreboardStore) GetOpenSessions(ctx context.Context) (map[string]string, error) {
	openSessions := make(map[string]string)
	var mu sync.Mutex

	err := ss.client.ForEachMaster(ctx, func(ctx context.Context, client *redis.Client) error {
		if client == nil {
			log.Printf("Warning: Redis Cluster ForEachMaster provided a nil client, skipping node.")
			return nil
		}

		iter := client.Scan(ctx, 0, fmt.Sprintf(redisu.OpenSessionKeyPrefix, "*"), 0).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()

			// Key format is session:{matchID}: with the ID inside the hash tag.
			startIdx := strings.Index(key, "{")
			endIdx := strings.Index(key, "}")
			if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
				log.Printf("Warning: Could not parse match ID from malformed session key: %s. Skipping.", key)
				continue
			}
			matchID := key[startIdx+1 : endIdx]

			instanceID, err := client.Get(ctx, key).Result()
			if err != nil {
				log.Printf("Warning: Failed to get holder of session key %s: %v. Skipping.", key, err)
				continue
			}

			mu.Lock()
			openSessions[matchID] = instanceID
			mu.Unlock()
		}

		return iter.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("error during scan of open sessions across Redis masters: %w", err)
	}

	return openSessions, nil
}
