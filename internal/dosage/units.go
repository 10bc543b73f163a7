package dosage

import "strings"

// Unit is a dose or amount unit.
type Unit string

const (
	UnitMG  Unit = "mg"
	UnitMCG Unit = "mcg"
	UnitIU  Unit = "iu"
)

// ParseUnit matches a unit label case-insensitively. "µg" and "ug" are read as mcg.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mg":
		return UnitMG, true
	case "mcg", "ug", "µg":
		return UnitMCG, true
	case "iu":
		return UnitIU, true
	}
	return "", false
}

// ToBaseUnit converts value to mg. IU has no compound-independent mg factor
// and is passed through unchanged.
func ToBaseUnit(value float64, unit Unit) float64 {
	switch unit {
	case UnitMCG:
		return value / 1000
	default:
		return value
	}
}
