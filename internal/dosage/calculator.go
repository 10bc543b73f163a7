package dosage

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// Frequency presets in doses per week.
const (
	FrequencyDaily       = "daily"
	FrequencyEOD         = "eod"
	FrequencyTwiceWeekly = "twice-weekly"
	FrequencyWeekly      = "weekly"
	FrequencyCustom      = "custom"
)

var frequencyTable = map[string]float64{
	FrequencyDaily:       7,
	FrequencyEOD:         3.5,
	FrequencyTwiceWeekly: 2,
	FrequencyWeekly:      1,
}

const (
	defaultFrequencyPerWeek = 7
	weeksPerMonth           = 4.33

	// floorEpsilon absorbs binary representation error, so 0.3/0.1 floors to 3.
	floorEpsilon = 1e-9
)

// IUWarning is attached to results computed from IU quantities.
const IUWarning = "IU quantities are not converted to mg; results assume amount and dose share the same IU potency"

// ValidationError reports a calculator input that failed its preconditions.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrInvalidAmounts is the validation failure for missing or non-positive amounts.
var ErrInvalidAmounts = &ValidationError{Reason: "missing or invalid amounts"}

// IsValidationError reports whether err is a calculator validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FrequencyPerWeek resolves a frequency preset. Custom frequencies parse
// custom as a weekly count; unparsable or non-positive values fall back to daily.
func FrequencyPerWeek(frequency, custom string) float64 {
	frequency = strings.ToLower(strings.TrimSpace(frequency))
	if frequency == FrequencyCustom {
		v, err := strconv.ParseFloat(strings.TrimSpace(custom), 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return defaultFrequencyPerWeek
		}
		return v
	}
	if v, ok := frequencyTable[frequency]; ok {
		return v
	}
	return defaultFrequencyPerWeek
}

// Calculate derives doses, duration, cost and reconstitution figures from in.
// Amounts are normalised to mg before any arithmetic. Cost per dose divides by
// the floored dose count reported in the result.
func Calculate(in models.CalculatorInput) (*models.CalculationResult, error) {
	if !positiveFinite(in.TotalAmount) || !positiveFinite(in.DesiredDose) {
		return nil, ErrInvalidAmounts
	}

	amountUnit := unitOrDefault(in.AmountUnit)
	doseUnit := unitOrDefault(in.DoseUnit)

	totalBase := ToBaseUnit(in.TotalAmount, amountUnit)
	doseBase := ToBaseUnit(in.DesiredDose, doseUnit)
	perWeek := FrequencyPerWeek(in.Frequency, in.CustomFrequency)

	res := &models.CalculationResult{FrequencyPerWeek: perWeek}

	res.TotalDoses = int(math.Floor(totalBase/doseBase + floorEpsilon))
	res.DurationDays = int(math.Round(float64(res.TotalDoses) / (perWeek / 7)))
	res.DurationWeeks = roundTo(float64(res.DurationDays)/7, 1)

	if positiveFinite(in.ProductPrice) && res.TotalDoses > 0 {
		res.CostPerDose = roundTo(in.ProductPrice/float64(res.TotalDoses), 2)
		res.CostPerWeek = roundTo(res.CostPerDose*perWeek, 2)
		res.CostPerMonth = roundTo(res.CostPerWeek*weeksPerMonth, 2)
	}

	if positiveFinite(in.ReconstitutionVolume) {
		res.Concentration = roundTo(totalBase/in.ReconstitutionVolume, 2)
		if res.Concentration > 0 {
			res.InjectionVolume = roundTo(doseBase/res.Concentration, 2)
		}
	}

	if amountUnit == UnitIU || doseUnit == UnitIU {
		res.Warnings = append(res.Warnings, IUWarning)
	}
	return res, nil
}

func unitOrDefault(s string) Unit {
	if u, ok := ParseUnit(s); ok {
		return u
	}
	return UnitMG
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
