// roster/store/player_store.go
package store

import (
	"context"
	"fmt"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlayerStore represents the MongoDB data store for players. Ownership is
// enforced one level up: services resolve the team first, so these queries
// only scope by team.
type PlayerStore struct {
	collection *mongo.Collection
}

// NewPlayerStore creates a new PlayerStore instance.
func NewPlayerStore(collection *mongo.Collection) *PlayerStore {
	return &PlayerStore{
		collection: collection,
	}
}

// CreatePlayer inserts a new player document.
func (ps *PlayerStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	_, err := ps.collection.InsertOne(ctx, player)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("player %s already exists", player.ID)
		}
		return fmt.Errorf("failed to create player %s: %w", player.ID, err)
	}
	return nil
}

// GetPlayer retrieves a player by ID. Returns mongo.ErrNoDocuments if absent.
func (ps *PlayerStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	var player models.Player
	err := ps.collection.FindOne(ctx, bson.M{"_id": playerID}).Decode(&player)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// ListPlayersByTeam returns a team's roster sorted by shirt number.
func (ps *PlayerStore) ListPlayersByTeam(ctx context.Context, teamID string) ([]models.Player, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})

	cursor, err := ps.collection.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for team %s: %w", teamID, err)
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players for team %s: %w", teamID, err)
	}
	return players, nil
}

// CountPlayersByTeams counts players across a set of teams.
func (ps *PlayerStore) CountPlayersByTeams(ctx context.Context, teamIDs []string) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	count, err := ps.collection.CountDocuments(ctx, bson.M{"team_id": bson.M{"$in": teamIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// UpdatePlayer updates the mutable fields of a player.
func (ps *PlayerStore) UpdatePlayer(ctx context.Context, player *models.Player) error {
	update := bson.M{"$set": bson.M{
		"name":     player.Name,
		"number":   player.Number,
		"position": player.Position,
		"active":   player.Active,
	}}
	res, err := ps.collection.UpdateOne(ctx, bson.M{"_id": player.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeletePlayer removes a player document.
func (ps *PlayerStore) DeletePlayer(ctx context.Context, playerID string) error {
	res, err := ps.collection.DeleteOne(ctx, bson.M{"_id": playerID})
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", playerID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeletePlayersByTeam removes every player of a team. Used by the cascading
// team delete.
func (ps *PlayerStore) DeletePlayersByTeam(ctx context.Context, teamID string) error {
	if _, err := ps.collection.DeleteMany(ctx, bson.M{"team_id": teamID}); err != nil {
		return fmt.Errorf("failed to delete players of team %s: %w", teamID, err)
	}
	return nil
}
