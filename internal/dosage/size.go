package dosage

import (
	"regexp"
	"strconv"
)

var sizeLabelRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mg|mcg|ug|µg|iu)\b`)

// ParseSizeLabel reads the quantity of an offer size label such as "5mg",
// "10 mg vial" or "5000 IU". The first quantity in the label wins.
func ParseSizeLabel(label string) (float64, Unit, bool) {
	m := sizeLabelRe.FindStringSubmatch(label)
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, "", false
	}
	u, ok := ParseUnit(m[2])
	if !ok {
		return 0, "", false
	}
	return v, u, true
}

// MilligramsInLabel returns the mg content of a size label. IU labels have no
// mg equivalent and report false.
func MilligramsInLabel(label string) (float64, bool) {
	v, u, ok := ParseSizeLabel(label)
	if !ok || u == UnitIU {
		return 0, false
	}
	return ToBaseUnit(v, u), true
}
