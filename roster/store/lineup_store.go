// roster/store/lineup_store.go
package store

import (
	"context"
	"fmt"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LineupStore represents the MongoDB data store for match lineups. Each slot
// is its own document keyed "<matchID>:<slot>", so saving a slot is an upsert
// and a full rotation is a bulk replace. Multi-row writes run inside a
// transaction; the lineup is only ever observed whole.
type LineupStore struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

// NewLineupStore creates a new LineupStore instance.
func NewLineupStore(client *mongodb.Client, collection *mongo.Collection) *LineupStore {
	return &LineupStore{
		client:     client,
		collection: collection,
	}
}

// SlotID builds the composite document ID for a match slot.
func SlotID(matchID string, slot int) string {
	return fmt.Sprintf("%s:%d", matchID, slot)
}

// GetLineup returns a match's lineup rows ordered by slot. Missing slots are
// simply absent; a partial lineup is a valid state.
func (ls *LineupStore) GetLineup(ctx context.Context, matchID string) ([]models.LineupSlot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "slot", Value: 1}})

	cursor, err := ls.collection.Find(ctx, bson.M{"match_id": matchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get lineup for match %s: %w", matchID, err)
	}
	defer cursor.Close(ctx)

	var slots []models.LineupSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode lineup for match %s: %w", matchID, err)
	}
	return slots, nil
}

// upsertSlotModels builds one upserting replace per requested slot.
func upsertSlotModels(matchID string, lineup map[int]string) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(lineup))
	for slot, playerID := range lineup {
		doc := models.LineupSlot{
			ID:       SlotID(matchID, slot),
			MatchID:  matchID,
			Slot:     slot,
			PlayerID: playerID,
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return writes
}

// replaceLineupModels builds the ordered delete-then-insert write set that
// swaps a match's lineup wholesale.
func replaceLineupModels(matchID string, lineup map[int]string) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(lineup)+1)
	writes = append(writes, mongo.NewDeleteManyModel().
		SetFilter(bson.M{"match_id": matchID}))

	for slot, playerID := range lineup {
		doc := models.LineupSlot{
			ID:       SlotID(matchID, slot),
			MatchID:  matchID,
			Slot:     slot,
			PlayerID: playerID,
		}
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(doc))
	}
	return writes
}

// UpsertSlots writes the given slot assignments, creating or overwriting each
// one, atomically. Slots not mentioned keep their current occupant.
func (ls *LineupStore) UpsertSlots(ctx context.Context, matchID string, lineup map[int]string) error {
	if len(lineup) == 0 {
		return nil
	}

	_, err := ls.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := ls.collection.BulkWrite(sessCtx, upsertSlotModels(matchID, lineup)); err != nil {
			return nil, fmt.Errorf("failed to upsert lineup for match %s: %w", matchID, err)
		}
		return nil, nil
	})
	return err
}

// ReplaceLineup swaps the whole lineup of a match for a new slot mapping
// inside one transaction. Rotation rewrites all six rows at once; partial
// failure would leave a court with two players in one slot, so it is
// all-or-nothing.
func (ls *LineupStore) ReplaceLineup(ctx context.Context, matchID string, lineup map[int]string) error {
	_, err := ls.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		opts := options.BulkWrite().SetOrdered(true)
		if _, err := ls.collection.BulkWrite(sessCtx, replaceLineupModels(matchID, lineup), opts); err != nil {
			return nil, fmt.Errorf("failed to replace lineup for match %s: %w", matchID, err)
		}
		return nil, nil
	})
	return err
}

// UpdateSlot points one slot at a different player. Returns
// mongo.ErrNoDocuments when the slot was never filled.
func (ls *LineupStore) UpdateSlot(ctx context.Context, matchID string, slot int, playerID string) error {
	filter := bson.M{"_id": SlotID(matchID, slot)}
	update := bson.M{"$set": bson.M{"player_id": playerID}}

	res, err := ls.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update slot %d of match %s: %w", slot, matchID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindSlotByPlayer returns the slot a player currently occupies in a match,
// or mongo.ErrNoDocuments.
func (ls *LineupStore) FindSlotByPlayer(ctx context.Context, matchID, playerID string) (*models.LineupSlot, error) {
	var slot models.LineupSlot
	filter := bson.M{"match_id": matchID, "player_id": playerID}
	if err := ls.collection.FindOne(ctx, filter).Decode(&slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// DeleteLineupsByMatches removes the lineups of a set of matches. Used by the
// cascading deletes.
func (ls *LineupStore) DeleteLineupsByMatches(ctx context.Context, matchIDs []string) error {
	if len(matchIDs) == 0 {
		return nil
	}
	if _, err := ls.collection.DeleteMany(ctx, bson.M{"match_id": bson.M{"$in": matchIDs}}); err != nil {
		return fmt.Errorf("failed to delete lineups for matches: %w", err)
	}
	return nil
}
