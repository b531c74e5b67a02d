// roster/api/handler_test.go
package api

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/Renan-Rosa/rally-scout/roster/service"
	"github.com/Renan-Rosa/rally-scout/shared/auth"
)

func TestWriteServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation rejects with 400", service.ErrValidation, 400},
		{"team not found is 404", service.ErrTeamNotFound, 404},
		{"player not found is 404", service.ErrPlayerNotFound, 404},
		{"match not found is 404", service.ErrMatchNotFound, 404},
		{"slot not found is 404", service.ErrSlotNotFound, 404},
		{"state conflict is 409", service.ErrMatchStateConflict, 409},
		{"live match exists is 409", service.ErrLiveMatchExists, 409},
		{"missing lineup blocks start with 409", service.ErrLineupRequired, 409},
		{"nothing to undo is 409", service.ErrNothingToUndo, 409},
		{"unauthenticated is 401", auth.ErrUnauthenticated, 401},
		{"unknown errors are 500", errors.New("replica set unreachable"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, "test operation", tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
