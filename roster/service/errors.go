// roster/service/errors.go
package service

import "fmt"

// Custom errors for clear communication to the API layer. Handlers map these
// onto HTTP statuses; everything else surfaces as a 500.
var (
	ErrTeamNotFound   = fmt.Errorf("team not found")
	ErrPlayerNotFound = fmt.Errorf("player not found")
	ErrMatchNotFound  = fmt.Errorf("match not found")
	ErrSlotNotFound   = fmt.Errorf("lineup slot not found")

	ErrValidation = fmt.Errorf("validation failed")

	ErrMatchStateConflict = fmt.Errorf("match is not in a state that allows this operation")
	ErrLiveMatchExists    = fmt.Errorf("team already has a live match")
	ErrLineupRequired     = fmt.Errorf("lineup must be saved before the match starts")
	ErrNothingToUndo      = fmt.Errorf("no actions to undo")
)

// invalid builds a field-level validation error that handlers can recognize
// with errors.Is(err, ErrValidation).
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
