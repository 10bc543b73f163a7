package models

import "time"

// PriceSnapshot is a recorded observation of an offer price.
type PriceSnapshot struct {
	ID             int64     `db:"id" json:"id"`
	PeptideID      string    `db:"peptide_id" json:"peptideId"`
	RetailerID     string    `db:"retailer_id" json:"retailerId"`
	Size           string    `db:"size" json:"size"`
	Price          float64   `db:"price" json:"price"`
	EffectivePrice float64   `db:"effective_price" json:"effectivePrice"`
	InStock        bool      `db:"in_stock" json:"inStock"`
	RecordedAt     time.Time `db:"recorded_at" json:"recordedAt"`
}

// PriceChange describes an offer whose effective price moved between syncs.
type PriceChange struct {
	PeptideID   string  `json:"peptideId"`
	PeptideName string  `json:"peptideName"`
	RetailerID  string  `json:"retailerId"`
	Size        string  `json:"size"`
	OldPrice    float64 `json:"oldPrice"`
	NewPrice    float64 `json:"newPrice"`
}
