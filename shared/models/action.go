// shared/models/action.go
package models

import (
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// Action is one append-only ledger entry of the scouting log. PlayerID is
// empty for an unattributed or opponent-caused event. IsOpponentPoint marks
// entries describing the opponent's own touch, kept for analytics segregation.
// Undo removes the most recently created entry for a match; there is no
// arbitrary delete.
type Action struct {
	ID              string                  `bson:"_id" json:"id"`
	MatchID         string                  `bson:"match_id" json:"matchId"`
	PlayerID        string                  `bson:"player_id,omitempty" json:"playerId,omitempty"`
	Type            volleyball.ActionType   `bson:"type" json:"type"`
	Result          volleyball.ActionResult `bson:"result" json:"result"`
	Set             int                     `bson:"set" json:"set"`
	IsOpponentPoint bool                    `bson:"is_opponent_point" json:"isOpponentPoint"`
	CreatedAt       time.Time               `bson:"created_at" json:"createdAt"`
}
