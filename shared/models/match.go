// shared/models/match.go
package models

import (
	"time"

	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// Match is one scouted fixture against an opponent. ScoreHome/ScoreAway are
// the live counters for the in-progress set only; they reset to zero at every
// set boundary. Completed sets live in Sets as one ordered sequence of
// (home, away) records, index = set number - 1.
type Match struct {
	ID         string                 `bson:"_id" json:"id"`
	TeamID     string                 `bson:"team_id" json:"teamId"`
	Opponent   string                 `bson:"opponent" json:"opponent"`
	Location   string                 `bson:"location,omitempty" json:"location,omitempty"`
	Date       time.Time              `bson:"date" json:"date"`
	Status     volleyball.MatchStatus `bson:"status" json:"status"`
	CurrentSet int                    `bson:"current_set" json:"currentSet"`
	ScoreHome  int                    `bson:"score_home" json:"scoreHome"`
	ScoreAway  int                    `bson:"score_away" json:"scoreAway"`
	Sets       []volleyball.SetScore  `bson:"sets" json:"sets"`
	CreatedAt  *time.Time             `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}
