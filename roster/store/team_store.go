// roster/store/team_store.go
package store

import (
	"context"
	"fmt"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TeamStore represents the MongoDB data store for teams. Every read is scoped
// by the owning user; a team belonging to someone else behaves exactly like a
// team that does not exist.
type TeamStore struct {
	collection *mongo.Collection
}

// NewTeamStore creates a new TeamStore instance.
func NewTeamStore(collection *mongo.Collection) *TeamStore {
	return &TeamStore{
		collection: collection,
	}
}

// CreateTeam inserts a new team document.
func (ts *TeamStore) CreateTeam(ctx context.Context, team *models.Team) error {
	_, err := ts.collection.InsertOne(ctx, team)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("team %s already exists", team.ID)
		}
		return fmt.Errorf("failed to create team %s: %w", team.ID, err)
	}
	return nil
}

// GetTeam retrieves a team by ID, scoped to the owning user.
// Returns mongo.ErrNoDocuments if absent or owned by someone else.
func (ts *TeamStore) GetTeam(ctx context.Context, userID, teamID string) (*models.Team, error) {
	var team models.Team
	filter := bson.M{"_id": teamID, "user_id": userID}
	err := ts.collection.FindOne(ctx, filter).Decode(&team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams returns all teams owned by a user, sorted by name.
func (ts *TeamStore) ListTeams(ctx context.Context, userID string) ([]models.Team, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := ts.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var teams []models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams for user %s: %w", userID, err)
	}
	return teams, nil
}

// ListTeamIDs returns just the IDs of a user's teams, for scoping match and
// action queries.
func (ts *TeamStore) ListTeamIDs(ctx context.Context, userID string) ([]string, error) {
	teams, err := ts.ListTeams(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// CountTeams counts the teams owned by a user.
func (ts *TeamStore) CountTeams(ctx context.Context, userID string) (int64, error) {
	count, err := ts.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count teams for user %s: %w", userID, err)
	}
	return count, nil
}

// UpdateTeam updates the mutable fields of a team, scoped to the owning user.
func (ts *TeamStore) UpdateTeam(ctx context.Context, userID string, team *models.Team) error {
	filter := bson.M{"_id": team.ID, "user_id": userID}
	update := bson.M{"$set": bson.M{
		"name":       team.Name,
		"category":   team.Category,
		"updated_at": team.UpdatedAt,
	}}
	res, err := ts.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteTeam removes a team document, scoped to the owning user. Cascading
// deletes of players, matches, lineups and actions are orchestrated by the
// service inside one transaction.
func (ts *TeamStore) DeleteTeam(ctx context.Context, userID, teamID string) error {
	res, err := ts.collection.DeleteOne(ctx, bson.M{"_id": teamID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete team %s: %w", teamID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
