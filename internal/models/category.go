package models

import "time"

// Category is an upstream catalog category.
type Category struct {
	ID   FlexibleID `json:"id" msgpack:"id"`
	Name string     `json:"name" msgpack:"name"`
}

// Retailer is an upstream vendor entry.
type Retailer struct {
	ID   FlexibleID `json:"id" msgpack:"id"`
	Name string     `json:"name" msgpack:"name"`
}

// DisplayCategory is a category decorated with derived display identity.
type DisplayCategory struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
	PeptideCount int    `json:"peptideCount"`
}

// DisplayRetailer is a retailer decorated with derived display identity.
type DisplayRetailer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	HexColor   string `json:"hexColor"`
	OfferCount int    `json:"offerCount"`
}

// Catalog is one consistent snapshot of the upstream catalog.
type Catalog struct {
	Peptides   []Peptide  `json:"peptides" msgpack:"peptides"`
	Categories []Category `json:"categories" msgpack:"categories"`
	Retailers  []Retailer `json:"retailers" msgpack:"retailers"`
	FetchedAt  time.Time  `json:"fetchedAt" msgpack:"fetched_at"`
}

// PeptideByID returns the peptide with the given id.
func (c *Catalog) PeptideByID(id string) (*Peptide, bool) {
	for i := range c.Peptides {
		if c.Peptides[i].ID.String() == id {
			return &c.Peptides[i], true
		}
	}
	return nil, false
}
