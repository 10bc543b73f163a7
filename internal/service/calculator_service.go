package service

import (
	"context"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/dosage"
	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// CalculateRequest is a calculator input optionally anchored to a catalog offer.
// When PeptideID and RetailerID are set, the offer's effective price fills
// ProductPrice and its size label fills TotalAmount when those are not given.
type CalculateRequest struct {
	models.CalculatorInput
	PeptideID  string     `json:"peptideId"`
	RetailerID string     `json:"retailerId"`
	Size       string     `json:"size"`
	StartDate  *time.Time `json:"startDate"`
}

// PriceSource names the offer a calculation was priced from.
type PriceSource struct {
	PeptideID    string  `json:"peptideId"`
	PeptideName  string  `json:"peptideName"`
	RetailerID   string  `json:"retailerId"`
	RetailerName string  `json:"retailerName"`
	Size         string  `json:"size"`
	Price        float64 `json:"price"`
}

// CalculateResponse wraps a calculation with its inputs after resolution.
type CalculateResponse struct {
	*models.CalculationResult
	Input       models.CalculatorInput `json:"input"`
	PriceSource *PriceSource           `json:"priceSource,omitempty"`
	Schedule    []time.Time            `json:"schedule,omitempty"`
}

// CalculatorService runs dosage calculations against catalog data.
type CalculatorService struct {
	catalog *CatalogService
}

// NewCalculatorService constructs a CalculatorService.
func NewCalculatorService(catalog *CatalogService) *CalculatorService {
	return &CalculatorService{catalog: catalog}
}

// Calculate resolves catalog references in req and runs the dosage calculator.
func (s *CalculatorService) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error) {
	in := req.CalculatorInput
	var source *PriceSource

	if req.PeptideID != "" {
		p, err := s.catalog.GetPeptide(ctx, req.PeptideID)
		if err != nil {
			return nil, err
		}
		if in.AmountUnit == "" {
			in.AmountUnit = p.Unit
		}
		if in.DoseUnit == "" {
			in.DoseUnit = p.Unit
		}

		if req.RetailerID != "" {
			offer, ok := p.FindOffer(req.RetailerID, req.Size)
			if !ok {
				return nil, utils.ErrOfferNotFound
			}
			if in.ProductPrice <= 0 {
				in.ProductPrice = offer.EffectivePrice()
			}
			if in.TotalAmount <= 0 {
				if v, u, ok := dosage.ParseSizeLabel(offer.Size); ok {
					in.TotalAmount = v
					in.AmountUnit = string(u)
				}
			}
			source = &PriceSource{
				PeptideID:    p.ID.String(),
				PeptideName:  p.Name,
				RetailerID:   offer.RetailerID.String(),
				RetailerName: s.catalog.retailerName(*offer),
				Size:         offer.Size,
				Price:        offer.EffectivePrice(),
			}
		}
	}

	result, err := dosage.Calculate(in)
	if err != nil {
		return nil, err
	}

	resp := &CalculateResponse{CalculationResult: result, Input: in, PriceSource: source}
	if req.StartDate != nil {
		resp.Schedule = dosage.Schedule(result, *req.StartDate)
	}
	return resp, nil
}
