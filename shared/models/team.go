// shared/models/team.go
package models

import (
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// Team is a scouted squad, stored persistently in MongoDB. Every team belongs
// to the user who created it; all reads are scoped through that ownership.
type Team struct {
	ID        string                  `bson:"_id" json:"id"`
	UserID    string                  `bson:"user_id" json:"userId"`
	Name      string                  `bson:"name" json:"name"`
	Category  volleyball.TeamCategory `bson:"category" json:"category"`
	CreatedAt *time.Time              `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time              `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
