package models

// CalculatorInput carries one "Calculate" request.
// TotalAmount is expressed in AmountUnit; DesiredDose in DoseUnit.
type CalculatorInput struct {
	TotalAmount          float64 `json:"totalAmount"`
	AmountUnit           string  `json:"amountUnit"`
	DesiredDose          float64 `json:"desiredDose"`
	DoseUnit             string  `json:"doseUnit"`
	Frequency            string  `json:"frequency"`
	CustomFrequency      string  `json:"customFrequency"`
	ProductPrice         float64 `json:"productPrice"`
	ReconstitutionVolume float64 `json:"reconstitutionVolume"`
}

// CalculationResult is the derived dosing and cost breakdown.
type CalculationResult struct {
	TotalDoses       int      `json:"totalDoses"`
	DurationDays     int      `json:"durationDays"`
	DurationWeeks    float64  `json:"durationWeeks"`
	CostPerDose      float64  `json:"costPerDose"`
	CostPerWeek      float64  `json:"costPerWeek"`
	CostPerMonth     float64  `json:"costPerMonth"`
	Concentration    float64  `json:"concentration"`
	InjectionVolume  float64  `json:"injectionVolume"`
	FrequencyPerWeek float64  `json:"frequencyPerWeek"`
	Warnings         []string `json:"warnings,omitempty"`
}
