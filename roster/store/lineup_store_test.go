// roster/store/lineup_store_test.go
package store

import (
	"testing"

	"github.com/Renan-Rosa/rally-scout/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSlotID(t *testing.T) {
	if got := SlotID("match-1", 4); got != "match-1:4" {
		t.Errorf("SlotID() = %q, want %q", got, "match-1:4")
	}
}

func TestUpsertSlotModels(t *testing.T) {
	lineup := map[int]string{1: "p1", 4: "p4"}

	writes := upsertSlotModels("match-1", lineup)
	if len(writes) != len(lineup) {
		t.Fatalf("got %d write models, want %d", len(writes), len(lineup))
	}

	seen := make(map[string]models.LineupSlot)
	for _, w := range writes {
		replace, ok := w.(*mongo.ReplaceOneModel)
		if !ok {
			t.Fatalf("unexpected write model %T, want *mongo.ReplaceOneModel", w)
		}
		if replace.Upsert == nil || !*replace.Upsert {
			t.Error("replace model is not an upsert")
		}
		doc, ok := replace.Replacement.(models.LineupSlot)
		if !ok {
			t.Fatalf("unexpected replacement %T, want models.LineupSlot", replace.Replacement)
		}
		seen[doc.ID] = doc
	}

	for slot, playerID := range lineup {
		doc, ok := seen[SlotID("match-1", slot)]
		if !ok {
			t.Errorf("no write for slot %d", slot)
			continue
		}
		if doc.Slot != slot || doc.PlayerID != playerID || doc.MatchID != "match-1" {
			t.Errorf("slot %d document = %+v", slot, doc)
		}
	}
}

// A rotation must clear the old rows before inserting the new ones within the
// same ordered write set, so no interleaving can show a half-rotated court.
func TestReplaceLineupModelsDeleteFirst(t *testing.T) {
	lineup := map[int]string{1: "p2", 2: "p3", 3: "p4", 4: "p5", 5: "p6", 6: "p1"}

	writes := replaceLineupModels("match-1", lineup)
	if len(writes) != len(lineup)+1 {
		t.Fatalf("got %d write models, want %d", len(writes), len(lineup)+1)
	}

	del, ok := writes[0].(*mongo.DeleteManyModel)
	if !ok {
		t.Fatalf("first write model is %T, want *mongo.DeleteManyModel", writes[0])
	}
	filter, ok := del.Filter.(bson.M)
	if !ok || filter["match_id"] != "match-1" {
		t.Errorf("delete filter = %+v, want match_id match-1", del.Filter)
	}

	inserted := make(map[int]string)
	for _, w := range writes[1:] {
		insert, ok := w.(*mongo.InsertOneModel)
		if !ok {
			t.Fatalf("unexpected write model %T, want *mongo.InsertOneModel", w)
		}
		doc, ok := insert.Document.(models.LineupSlot)
		if !ok {
			t.Fatalf("unexpected document %T, want models.LineupSlot", insert.Document)
		}
		if doc.ID != SlotID("match-1", doc.Slot) {
			t.Errorf("slot %d inserted with ID %q", doc.Slot, doc.ID)
		}
		inserted[doc.Slot] = doc.PlayerID
	}

	for slot, playerID := range lineup {
		if inserted[slot] != playerID {
			t.Errorf("slot %d = %q, want %q", slot, inserted[slot], playerID)
		}
	}
}
