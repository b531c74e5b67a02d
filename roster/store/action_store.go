// roster/store/action_store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/mongodb"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoActions is returned by UndoLast when the match ledger is empty.
var ErrNoActions = errors.New("no actions recorded for match")

// ActionStore represents the MongoDB data store for the append-only action
// ledger. Recording and undoing pair a ledger mutation with the corresponding
// score increment on the match document inside one transaction, so the ledger
// and the scoreboard can never disagree.
type ActionStore struct {
	client      *mongodb.Client
	collection  *mongo.Collection
	matchesColl *mongo.Collection
}

// NewActionStore creates a new ActionStore instance.
func NewActionStore(client *mongodb.Client, collection, matchesColl *mongo.Collection) *ActionStore {
	return &ActionStore{
		client:      client,
		collection:  collection,
		matchesColl: matchesColl,
	}
}

// RecordAction appends one ledger entry and applies its score effect to the
// LIVE match document atomically. ErrMatchStateConflict is returned when the
// match is not LIVE anymore.
func (as *ActionStore) RecordAction(ctx context.Context, action *models.Action) error {
	homeDelta, awayDelta := volleyball.PointDelta(action.Result, action.IsOpponentPoint)

	_, err := as.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": action.MatchID, "status": volleyball.StatusLive}
		update := bson.M{"$inc": bson.M{
			"score_home": homeDelta,
			"score_away": awayDelta,
		}}
		res, err := as.matchesColl.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return nil, fmt.Errorf("failed to apply score for match %s: %w", action.MatchID, err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrMatchStateConflict
		}

		if _, err := as.collection.InsertOne(sessCtx, action); err != nil {
			return nil, fmt.Errorf("failed to insert action %s: %w", action.ID, err)
		}
		return nil, nil
	})
	return err
}

// UndoLast removes the most recently recorded action of a match and reverses
// its score effect, atomically. Returns the removed action so callers can
// report what was undone, or ErrNoActions for an empty ledger.
func (as *ActionStore) UndoLast(ctx context.Context, matchID string) (*models.Action, error) {
	result, err := as.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		opts := options.FindOneAndDelete().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

		var last models.Action
		err := as.collection.FindOneAndDelete(sessCtx, bson.M{"match_id": matchID}, opts).Decode(&last)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNoActions
			}
			return nil, fmt.Errorf("failed to remove last action of match %s: %w", matchID, err)
		}

		homeDelta, awayDelta := volleyball.PointDelta(last.Result, last.IsOpponentPoint)
		if homeDelta != 0 || awayDelta != 0 {
			filter := bson.M{"_id": matchID, "status": volleyball.StatusLive}
			update := bson.M{"$inc": bson.M{
				"score_home": -homeDelta,
				"score_away": -awayDelta,
			}}
			res, err := as.matchesColl.UpdateOne(sessCtx, filter, update)
			if err != nil {
				return nil, fmt.Errorf("failed to reverse score for match %s: %w", matchID, err)
			}
			if res.MatchedCount == 0 {
				return nil, ErrMatchStateConflict
			}
		}
		return &last, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Action), nil
}

// ListActionsByMatch returns a match's ledger in recording order.
func (as *ActionStore) ListActionsByMatch(ctx context.Context, matchID string) ([]models.Action, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := as.collection.Find(ctx, bson.M{"match_id": matchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions for match %s: %w", matchID, err)
	}
	defer cursor.Close(ctx)

	var actions []models.Action
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions for match %s: %w", matchID, err)
	}
	return actions, nil
}

// ResultCounts is one aggregation bucket: how often a (type, result) pair was
// recorded.
type ResultCounts struct {
	Type   volleyball.ActionType   `bson:"type"`
	Result volleyball.ActionResult `bson:"result"`
	Count  int                     `bson:"count"`
}

// CountByTypeResult aggregates a player's own ledger entries across a set of
// matches into (type, result) buckets. Opponent-flagged entries never carry a
// player ID, so they fall out of this aggregation naturally.
func (as *ActionStore) CountByTypeResult(ctx context.Context, playerID string, matchIDs []string) ([]ResultCounts, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"player_id": playerID,
			"match_id":  bson.M{"$in": matchIDs},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"type": "$type", "result": "$result"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"type":   "$_id.type",
			"result": "$_id.result",
			"count":  1,
		}}},
	}

	cursor, err := as.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate actions for player %s: %w", playerID, err)
	}
	defer cursor.Close(ctx)

	var counts []ResultCounts
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode action counts for player %s: %w", playerID, err)
	}
	return counts, nil
}

// CountTypeResultsByMatches aggregates the attributed ledger entries of a set
// of matches into (type, result) buckets, regardless of player. Unattributed
// entries (opponent rows and the opponent-error shortcut) stay out; they say
// nothing about the team's own execution.
func (as *ActionStore) CountTypeResultsByMatches(ctx context.Context, matchIDs []string) ([]ResultCounts, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"match_id":  bson.M{"$in": matchIDs},
			"player_id": bson.M{"$nin": bson.A{nil, ""}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"type": "$type", "result": "$result"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"type":   "$_id.type",
			"result": "$_id.result",
			"count":  1,
		}}},
	}

	cursor, err := as.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate actions by type: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []ResultCounts
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode per-type action counts: %w", err)
	}
	return counts, nil
}

// PlayerResultCounts is one aggregation bucket per (player, result) pair,
// feeding the per-player efficiency rankings.
type PlayerResultCounts struct {
	PlayerID string                  `bson:"player_id"`
	Result   volleyball.ActionResult `bson:"result"`
	Count    int                     `bson:"count"`
}

// CountByPlayerResult aggregates attributed ledger entries across a set of
// matches into (player, result) buckets.
func (as *ActionStore) CountByPlayerResult(ctx context.Context, matchIDs []string) ([]PlayerResultCounts, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"match_id":  bson.M{"$in": matchIDs},
			"player_id": bson.M{"$nin": bson.A{nil, ""}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"player_id": "$player_id", "result": "$result"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":       0,
			"player_id": "$_id.player_id",
			"result":    "$_id.result",
			"count":     1,
		}}},
	}

	cursor, err := as.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate actions by player: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []PlayerResultCounts
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode per-player action counts: %w", err)
	}
	return counts, nil
}

// DistinctMatches returns the IDs of the matches a player appears in.
func (as *ActionStore) DistinctMatches(ctx context.Context, playerID string) ([]string, error) {
	values, err := as.collection.Distinct(ctx, "match_id", bson.M{"player_id": playerID})
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct matches for player %s: %w", playerID, err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// DeleteActionsByMatches removes the ledgers of a set of matches. Used by the
// cascading deletes.
func (as *ActionStore) DeleteActionsByMatches(ctx context.Context, matchIDs []string) error {
	if len(matchIDs) == 0 {
		return nil
	}
	if _, err := as.collection.DeleteMany(ctx, bson.M{"match_id": bson.M{"$in": matchIDs}}); err != nil {
		return fmt.Errorf("failed to delete actions for matches: %w", err)
	}
	return nil
}
