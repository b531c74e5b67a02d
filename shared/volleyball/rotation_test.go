package volleyball

import (
	"reflect"
	"testing"
)

func TestRotateFullLineup(t *testing.T) {
	lineup := map[int]string{
		1: "p1", 2: "p2", 3: "p3", 4: "p4", 5: "p5", 6: "p6",
	}

	rotated := Rotate(lineup)

	want := map[int]string{
		1: "p2", 2: "p3", 3: "p4", 4: "p5", 5: "p6", 6: "p1",
	}
	if !reflect.DeepEqual(rotated, want) {
		t.Errorf("Rotate() = %v, want %v", rotated, want)
	}
}

func TestRotatePartialLineup(t *testing.T) {
	// Slots 2 and 5 filled: slot 1 receives old slot 2, slot 4 receives old
	// slot 5, everything else stays empty.
	lineup := map[int]string{2: "p2", 5: "p5"}

	rotated := Rotate(lineup)

	want := map[int]string{1: "p2", 4: "p5"}
	if !reflect.DeepEqual(rotated, want) {
		t.Errorf("Rotate() = %v, want %v", rotated, want)
	}
}

func TestRotateSixTimesRoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		lineup map[int]string
	}{
		{"full lineup", map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e", 6: "f"}},
		{"partial lineup", map[int]string{1: "a", 4: "d"}},
		{"single player", map[int]string{3: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := tt.lineup
			for i := 0; i < 6; i++ {
				current = Rotate(current)
			}
			if !reflect.DeepEqual(current, tt.lineup) {
				t.Errorf("after 6 rotations got %v, want original %v", current, tt.lineup)
			}
		})
	}
}

func TestRotateEmptyLineup(t *testing.T) {
	if got := Rotate(map[int]string{}); len(got) != 0 {
		t.Errorf("rotating an empty lineup produced %v", got)
	}
}

func TestValidSlot(t *testing.T) {
	for slot := 1; slot <= 6; slot++ {
		if !ValidSlot(slot) {
			t.Errorf("slot %d should be valid", slot)
		}
	}
	for _, slot := range []int{0, -1, 7, 100} {
		if ValidSlot(slot) {
			t.Errorf("slot %d should be invalid", slot)
		}
	}
}
