// shared/volleyball/rotation.go
package volleyball

// rotationSource gives, for each slot, the slot whose occupant moves into it
// on a clockwise serve rotation: new[1] = old[2], new[2] = old[3], ...,
// new[6] = old[1].
var rotationSource = map[int]int{
	1: 2, 2: 3, 3: 4, 4: 5, 5: 6, 6: 1,
}

// Rotate returns the lineup after one clockwise serve rotation. The input maps
// slot (1..6) to a player ID; slots absent from the map are empty. A partially
// filled lineup rotates only what is there: each slot receives the previous
// occupant of its source slot, or stays empty if the source was empty.
// Applying Rotate six times round-trips any lineup back to itself.
func Rotate(lineup map[int]string) map[int]string {
	rotated := make(map[int]string, len(lineup))
	for slot := MinSlot; slot <= MaxSlot; slot++ {
		if playerID, ok := lineup[rotationSource[slot]]; ok {
			rotated[slot] = playerID
		}
	}
	return rotated
}

// ValidSlot reports whether slot is one of the six court positions.
func ValidSlot(slot int) bool {
	return slot >= MinSlot && slot <= MaxSlot
}
