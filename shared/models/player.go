// shared/models/player.go
package models

import (
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// Player is an athlete on exactly one team's roster. The shirt number is
// conventionally unique within an active roster but not enforced.
type Player struct {
	ID        string              `bson:"_id" json:"id"`
	TeamID    string              `bson:"team_id" json:"teamId"`
	Name      string              `bson:"name" json:"name"`
	Number    int                 `bson:"number" json:"number"`
	Position  volleyball.Position `bson:"position" json:"position"`
	Active    bool                `bson:"active" json:"active"`
	CreatedAt *time.Time          `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}
