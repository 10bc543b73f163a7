package dosage

import (
	"math"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// maxScheduledDoses bounds the calendar returned for very long protocols.
const maxScheduledDoses = 366

// Schedule spreads result.TotalDoses over time starting at start, one dose every
// 7/FrequencyPerWeek days. Fractional intervals are rounded to the nearest hour.
func Schedule(result *models.CalculationResult, start time.Time) []time.Time {
	if result == nil || result.TotalDoses <= 0 || result.FrequencyPerWeek <= 0 {
		return nil
	}
	n := result.TotalDoses
	if n > maxScheduledDoses {
		n = maxScheduledDoses
	}
	intervalHours := math.Round(7 * 24 / result.FrequencyPerWeek)
	step := time.Duration(intervalHours) * time.Hour

	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * step)
	}
	return out
}
