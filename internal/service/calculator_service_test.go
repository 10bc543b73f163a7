package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/dosage"
	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

func TestCalculatorResolvesOfferPriceAndAmount(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	svc := NewCalculatorService(catalog)

	resp, err := svc.Calculate(context.Background(), CalculateRequest{
		CalculatorInput: models.CalculatorInput{
			DesiredDose:          250,
			DoseUnit:             "mcg",
			Frequency:            dosage.FrequencyDaily,
			ReconstitutionVolume: 2,
		},
		PeptideID:  "1",
		RetailerID: "aminoasylum",
		Size:       "5mg",
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if resp.Input.TotalAmount != 5 || resp.Input.AmountUnit != "mg" {
		t.Fatalf("amount not resolved from size: %+v", resp.Input)
	}
	if resp.Input.ProductPrice != 30 {
		t.Fatalf("price = %v, want effective price 30", resp.Input.ProductPrice)
	}
	if resp.TotalDoses != 20 || resp.CostPerDose != 1.5 {
		t.Fatalf("result = %+v", resp.CalculationResult)
	}
	if resp.PriceSource == nil || resp.PriceSource.RetailerName != "Amino Asylum" {
		t.Fatalf("price source = %+v", resp.PriceSource)
	}
}

func TestCalculatorExplicitValuesWin(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	svc := NewCalculatorService(catalog)

	resp, err := svc.Calculate(context.Background(), CalculateRequest{
		CalculatorInput: models.CalculatorInput{
			TotalAmount:  10,
			AmountUnit:   "mg",
			DesiredDose:  500,
			DoseUnit:     "mcg",
			Frequency:    dosage.FrequencyDaily,
			ProductPrice: 80,
		},
		PeptideID:  "1",
		RetailerID: "aminoasylum",
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if resp.TotalDoses != 20 || resp.CostPerDose != 4 {
		t.Fatalf("result = %+v", resp.CalculationResult)
	}
}

func TestCalculatorUnknownOffer(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	svc := NewCalculatorService(catalog)

	_, err := svc.Calculate(context.Background(), CalculateRequest{
		CalculatorInput: models.CalculatorInput{DesiredDose: 1},
		PeptideID:       "1",
		RetailerID:      "nobody",
	})
	if !errors.Is(err, utils.ErrOfferNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCalculatorValidationAndSchedule(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	svc := NewCalculatorService(catalog)

	_, err := svc.Calculate(context.Background(), CalculateRequest{})
	if !dosage.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}

	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	resp, err := svc.Calculate(context.Background(), CalculateRequest{
		CalculatorInput: models.CalculatorInput{
			TotalAmount: 2, AmountUnit: "mg",
			DesiredDose: 500, DoseUnit: "mcg",
			Frequency: dosage.FrequencyWeekly,
		},
		StartDate: &start,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(resp.Schedule) != 4 {
		t.Fatalf("schedule = %v", resp.Schedule)
	}
	if !resp.Schedule[3].Equal(start.AddDate(0, 0, 21)) {
		t.Fatalf("last dose = %v", resp.Schedule[3])
	}
}
