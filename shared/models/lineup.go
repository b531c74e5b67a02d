// shared/models/lineup.go
package models

// LineupSlot assigns one player to one of the six court positions of a match.
// At most one player per slot and one slot per player; substitutions and
// rotations overwrite these rows in place, history lives in the action ledger.
type LineupSlot struct {
	ID       string `bson:"_id" json:"-"`
	MatchID  string `bson:"match_id" json:"matchId"`
	Slot     int    `bson:"slot" json:"slot"`
	PlayerID string `bson:"player_id" json:"playerId"`
}

// LineupMap flattens lineup rows into the slot -> player mapping the rotation
// and session logic work with.
func LineupMap(slots []LineupSlot) map[int]string {
	m := make(map[int]string, len(slots))
	for _, s := range slots {
		m[s.Slot] = s.PlayerID
	}
	return m
}
