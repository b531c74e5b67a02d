// roster/store/match_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/mongodb"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMatchStateConflict is returned when a conditional update found the match
// but not in the state the operation requires (e.g. scoring a match that is no
// longer LIVE, or starting one that already started).
var ErrMatchStateConflict = errors.New("match is not in the required state")

// ErrLiveMatchExists is returned by StartMatch when the team already has a
// match in progress.
var ErrLiveMatchExists = errors.New("team already has a live match")

// MatchStore represents the MongoDB data store for matches. Lifecycle
// mutations are conditional on the current status so concurrent scouts cannot
// race a match into an invalid state.
type MatchStore struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

// NewMatchStore creates a new MatchStore instance. The client handle is kept
// for multi-document transactions.
func NewMatchStore(client *mongodb.Client, collection *mongo.Collection) *MatchStore {
	return &MatchStore{
		client:     client,
		collection: collection,
	}
}

// CreateMatch inserts a new match document.
func (ms *MatchStore) CreateMatch(ctx context.Context, match *models.Match) error {
	_, err := ms.collection.InsertOne(ctx, match)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("match %s already exists", match.ID)
		}
		return fmt.Errorf("failed to create match %s: %w", match.ID, err)
	}
	return nil
}

// GetMatch retrieves a match by ID. Returns mongo.ErrNoDocuments if absent.
func (ms *MatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match
	err := ms.collection.FindOne(ctx, bson.M{"_id": matchID}).Decode(&match)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListMatchesByTeam returns a team's matches, newest fixture first.
func (ms *MatchStore) ListMatchesByTeam(ctx context.Context, teamID string) ([]models.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := ms.collection.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for team %s: %w", teamID, err)
	}
	defer cursor.Close(ctx)

	var matches []models.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches for team %s: %w", teamID, err)
	}
	return matches, nil
}

// ListMatchesByTeamsAndStatus returns the matches of a set of teams filtered
// by status, ordered by fixture date ascending.
func (ms *MatchStore) ListMatchesByTeamsAndStatus(ctx context.Context, teamIDs []string, status volleyball.MatchStatus) ([]models.Match, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"team_id": bson.M{"$in": teamIDs}, "status": status}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := ms.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s matches: %w", status, err)
	}
	defer cursor.Close(ctx)

	var matches []models.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode %s matches: %w", status, err)
	}
	return matches, nil
}

// CountMatchesByTeams counts matches across a set of teams.
func (ms *MatchStore) CountMatchesByTeams(ctx context.Context, teamIDs []string) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	count, err := ms.collection.CountDocuments(ctx, bson.M{"team_id": bson.M{"$in": teamIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// NextScheduledMatch returns the earliest SCHEDULED match of the given teams
// dated at or after the reference time, or mongo.ErrNoDocuments.
func (ms *MatchStore) NextScheduledMatch(ctx context.Context, teamIDs []string, after time.Time) (*models.Match, error) {
	if len(teamIDs) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	filter := bson.M{
		"team_id": bson.M{"$in": teamIDs},
		"status":  volleyball.StatusScheduled,
		"date":    bson.M{"$gte": after},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: 1}})

	var match models.Match
	if err := ms.collection.FindOne(ctx, filter, opts).Decode(&match); err != nil {
		return nil, err
	}
	return &match, nil
}

// LastFinishedMatch returns the most recent FINISHED match of the given teams,
// or mongo.ErrNoDocuments.
func (ms *MatchStore) LastFinishedMatch(ctx context.Context, teamIDs []string) (*models.Match, error) {
	if len(teamIDs) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	filter := bson.M{
		"team_id": bson.M{"$in": teamIDs},
		"status":  volleyball.StatusFinished,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var match models.Match
	if err := ms.collection.FindOne(ctx, filter, opts).Decode(&match); err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateMatch updates the fixture fields of a match. Score and lifecycle
// fields go through the dedicated conditional mutations below.
func (ms *MatchStore) UpdateMatch(ctx context.Context, match *models.Match) error {
	update := bson.M{"$set": bson.M{
		"opponent": match.Opponent,
		"location": match.Location,
		"date":     match.Date,
	}}
	res, err := ms.collection.UpdateOne(ctx, bson.M{"_id": match.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", match.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// StartMatch transitions a match from SCHEDULED to LIVE inside a transaction,
// after verifying the team has no other LIVE match. The check-then-act pair
// must be atomic or two scouts could start two matches at once.
func (ms *MatchStore) StartMatch(ctx context.Context, matchID, teamID string) error {
	_, err := ms.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		liveCount, err := ms.collection.CountDocuments(sessCtx, bson.M{
			"team_id": teamID,
			"status":  volleyball.StatusLive,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check for live matches of team %s: %w", teamID, err)
		}
		if liveCount > 0 {
			return nil, ErrLiveMatchExists
		}

		filter := bson.M{"_id": matchID, "status": volleyball.StatusScheduled}
		update := bson.M{"$set": bson.M{
			"status":      volleyball.StatusLive,
			"current_set": 1,
			"score_home":  0,
			"score_away":  0,
			"sets":        []volleyball.SetScore{},
		}}
		res, err := ms.collection.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return nil, fmt.Errorf("failed to start match %s: %w", matchID, err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrMatchStateConflict
		}
		return nil, nil
	})
	return err
}

// AdvanceSet closes the current set of a LIVE match: the running score is
// appended to the completed-sets sequence, the set counter increments and the
// running score resets.
func (ms *MatchStore) AdvanceSet(ctx context.Context, matchID string, closing volleyball.SetScore) error {
	filter := bson.M{
		"_id":         matchID,
		"status":      volleyball.StatusLive,
		"current_set": bson.M{"$lt": volleyball.MaxSets},
	}
	update := bson.M{
		"$push": bson.M{"sets": closing},
		"$inc":  bson.M{"current_set": 1},
		"$set":  bson.M{"score_home": 0, "score_away": 0},
	}
	res, err := ms.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to advance set for match %s: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return ErrMatchStateConflict
	}
	return nil
}

// FinishMatch transitions a LIVE match to FINISHED, folding the running score
// of the final set into the completed-sets sequence.
func (ms *MatchStore) FinishMatch(ctx context.Context, matchID string, closing volleyball.SetScore) error {
	filter := bson.M{"_id": matchID, "status": volleyball.StatusLive}
	update := bson.M{
		"$push": bson.M{"sets": closing},
		"$set": bson.M{
			"status":     volleyball.StatusFinished,
			"score_home": 0,
			"score_away": 0,
		},
	}
	res, err := ms.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish match %s: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return ErrMatchStateConflict
	}
	return nil
}

// CancelMatch transitions a SCHEDULED or LIVE match to CANCELED.
func (ms *MatchStore) CancelMatch(ctx context.Context, matchID string) error {
	filter := bson.M{
		"_id": matchID,
		"status": bson.M{"$in": []volleyball.MatchStatus{
			volleyball.StatusScheduled,
			volleyball.StatusLive,
		}},
	}
	update := bson.M{"$set": bson.M{"status": volleyball.StatusCanceled}}
	res, err := ms.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel match %s: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return ErrMatchStateConflict
	}
	return nil
}

// DeleteMatch removes a match document.
func (ms *MatchStore) DeleteMatch(ctx context.Context, matchID string) error {
	res, err := ms.collection.DeleteOne(ctx, bson.M{"_id": matchID})
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteMatchesByTeam removes every match of a team and returns their IDs so
// the cascading delete can clean up the dependent collections.
func (ms *MatchStore) DeleteMatchesByTeam(ctx context.Context, teamID string) ([]string, error) {
	cursor, err := ms.collection.Find(ctx, bson.M{"team_id": teamID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find matches of team %s: %w", teamID, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode match IDs of team %s: %w", teamID, err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	if _, err := ms.collection.DeleteMany(ctx, bson.M{"team_id": teamID}); err != nil {
		return nil, fmt.Errorf("failed to delete matches of team %s: %w", teamID, err)
	}
	return ids, nil
}
