package models

import (
	"strings"
	"time"
)

// StackDifficulty enumerates the stack tiers.
type StackDifficulty string

const (
	DifficultyBeginner     StackDifficulty = "Beginner"
	DifficultyIntermediate StackDifficulty = "Intermediate"
	DifficultyAdvanced     StackDifficulty = "Advanced"
)

// ParseStackDifficulty matches a difficulty case-insensitively.
func ParseStackDifficulty(s string) (StackDifficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return DifficultyBeginner, true
	case "intermediate":
		return DifficultyIntermediate, true
	case "advanced":
		return DifficultyAdvanced, true
	}
	return "", false
}

// Peptide is a catalog product entry as served by the upstream API.
// Optional hints are pointers so that "absent" and "zero" stay distinguishable.
type Peptide struct {
	ID          FlexibleID      `json:"id" msgpack:"id"`
	Name        string          `json:"name" msgpack:"name"`
	Category    string          `json:"category" msgpack:"category"`
	Unit        string          `json:"unit" msgpack:"unit"`
	Dosages     []string        `json:"dosages" msgpack:"dosages"`
	Description string          `json:"description,omitempty" msgpack:"description,omitempty"`
	Purity      string          `json:"purity,omitempty" msgpack:"purity,omitempty"`
	Retailers   []RetailerOffer `json:"retailers" msgpack:"retailers"`

	// Calculator hints
	StartingDose    *string `json:"startingDose,omitempty" msgpack:"starting_dose,omitempty"`
	MaintenanceDose *string `json:"maintenanceDose,omitempty" msgpack:"maintenance_dose,omitempty"`
	Frequency       *string `json:"frequency,omitempty" msgpack:"frequency,omitempty"`
	DosageNotes     *string `json:"dosageNotes,omitempty" msgpack:"dosage_notes,omitempty"`

	// Stack hints
	RecommendedForGoals []string         `json:"recommendedForGoals,omitempty" msgpack:"goals,omitempty"`
	StackDifficulty     *StackDifficulty `json:"stackDifficulty,omitempty" msgpack:"stack_difficulty,omitempty"`
	StackTiming         *string          `json:"stackTiming,omitempty" msgpack:"stack_timing,omitempty"`
	StackDuration       *int             `json:"stackDuration,omitempty" msgpack:"stack_duration,omitempty"`

	UpdatedAt *time.Time `json:"updatedAt,omitempty" msgpack:"updated_at,omitempty"`
}

// RetailerOffer is a single vendor listing for a peptide.
type RetailerOffer struct {
	RetailerID         FlexibleID `json:"retailer_id" msgpack:"retailer_id"`
	RetailerName       string     `json:"retailer_name" msgpack:"retailer_name"`
	Size               string     `json:"size" msgpack:"size"`
	Price              float64    `json:"price" msgpack:"price"`
	DiscountedPrice    *float64   `json:"discounted_price,omitempty" msgpack:"discounted_price,omitempty"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty" msgpack:"discount_percentage,omitempty"`
	Stock              bool       `json:"stock" msgpack:"stock"`
	AffiliateURL       string     `json:"affiliate_url" msgpack:"affiliate_url"`
	CouponCode         *string    `json:"coupon_code,omitempty" msgpack:"coupon_code,omitempty"`
}

// EffectivePrice returns the discounted price when present, otherwise the list price.
func (o RetailerOffer) EffectivePrice() float64 {
	if o.DiscountedPrice != nil {
		return *o.DiscountedPrice
	}
	return o.Price
}

// FindOffer returns the first offer for retailerID, narrowed by size when size is set.
func (p *Peptide) FindOffer(retailerID, size string) (*RetailerOffer, bool) {
	for i := range p.Retailers {
		o := &p.Retailers[i]
		if o.RetailerID.String() != retailerID {
			continue
		}
		if size != "" && !strings.EqualFold(o.Size, size) {
			continue
		}
		return o, true
	}
	return nil, false
}

// NormalizePeptide validates an upstream peptide in place. Unknown units fall
// back to mg, invalid difficulties are dropped and offers with negative prices
// are discarded.
func NormalizePeptide(p *Peptide) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)

	switch u := strings.ToLower(strings.TrimSpace(p.Unit)); u {
	case "mg", "mcg", "iu":
		p.Unit = u
	default:
		p.Unit = "mg"
	}

	if p.StackDifficulty != nil {
		if d, ok := ParseStackDifficulty(string(*p.StackDifficulty)); ok {
			p.StackDifficulty = &d
		} else {
			p.StackDifficulty = nil
		}
	}
	if p.StackDuration != nil && *p.StackDuration <= 0 {
		p.StackDuration = nil
	}

	dosages := p.Dosages[:0]
	for _, d := range p.Dosages {
		if d = strings.TrimSpace(d); d != "" {
			dosages = append(dosages, d)
		}
	}
	p.Dosages = dosages

	offers := p.Retailers[:0]
	for _, o := range p.Retailers {
		if o.Price < 0 {
			continue
		}
		if o.DiscountedPrice != nil && *o.DiscountedPrice < 0 {
			o.DiscountedPrice = nil
		}
		o.RetailerName = strings.TrimSpace(o.RetailerName)
		offers = append(offers, o)
	}
	p.Retailers = offers
}
