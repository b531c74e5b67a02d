// shared/redis/constants.go
package redis

import "fmt"

const (
	// ScoreboardKeyPrefix keys the live scoreboard snapshot of one match:
	// scoreboard:{matchID}. Hash tags keep a match's keys on one slot.
	ScoreboardKeyPrefix = "scoreboard:{%s}:"

	// OpenSessionKeyPrefix marks a match as having an open scouting session:
	// session:{matchID}. Value is the owning scout instance ID.
	OpenSessionKeyPrefix = "session:{%s}:"
)

// ErrRedisKeyNotFound is returned by stores when a looked-up key is absent.
var ErrRedisKeyNotFound = fmt.Errorf("redis key not found")
