// shared/volleyball/enums.go
package volleyball

// TeamCategory classifies a roster (men's, women's or mixed squad).
type TeamCategory string

const (
	CategoryMen   TeamCategory = "MEN"
	CategoryWomen TeamCategory = "WOMEN"
	CategoryMixed TeamCategory = "MIXED"
)

// ValidCategory reports whether c is one of the known team categories.
func ValidCategory(c TeamCategory) bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryMixed:
		return true
	}
	return false
}

// Position is a player's role on the court.
type Position string

const (
	PositionSetter   Position = "SETTER"
	PositionOutside  Position = "OUTSIDE"
	PositionOpposite Position = "OPPOSITE"
	PositionMiddle   Position = "MIDDLE"
	PositionLibero   Position = "LIBERO"
)

// ValidPosition reports whether p is one of the known positions.
func ValidPosition(p Position) bool {
	switch p {
	case PositionSetter, PositionOutside, PositionOpposite, PositionMiddle, PositionLibero:
		return true
	}
	return false
}

// ActionType is the kind of touch a scouted rally event describes.
type ActionType string

const (
	ActionServe   ActionType = "SERVE"
	ActionReceive ActionType = "RECEIVE"
	ActionAttack  ActionType = "ATTACK"
	ActionBlock   ActionType = "BLOCK"
	ActionDig     ActionType = "DIG"
	ActionSet     ActionType = "SET"
)

// ActionResult is the quality outcome attached to a recorded action.
type ActionResult string

const (
	ResultError    ActionResult = "ERROR"
	ResultNegative ActionResult = "NEGATIVE"
	ResultNeutral  ActionResult = "NEUTRAL"
	ResultPositive ActionResult = "POSITIVE"
	ResultPoint    ActionResult = "POINT"
)

const (
	// MinSlot and MaxSlot bound the six fixed court positions.
	MinSlot = 1
	MaxSlot = 6

	// MaxSets is the best-of-5 ceiling on the per-match set counter.
	MaxSets = 5

	// MinShirtNumber and MaxShirtNumber bound a player's shirt number.
	MinShirtNumber = 1
	MaxShirtNumber = 99
)
