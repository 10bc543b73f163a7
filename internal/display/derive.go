package display

import (
	"strings"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// DeriveCategories returns the distinct categories present in peptides, in
// first-seen order. Names come from known when the key matches a category id
// or name; otherwise the raw key is humanized.
func (r *Registry) DeriveCategories(peptides []models.Peptide, known []models.Category) []models.DisplayCategory {
	names := make(map[string]string, len(known)*2)
	for _, c := range known {
		names[c.ID.String()] = c.Name
		names[NormalizeCategory(c.Name)] = c.Name
	}

	index := make(map[string]int)
	var out []models.DisplayCategory
	for _, p := range peptides {
		key := p.Category
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].PeptideCount++
			continue
		}
		name, ok := names[key]
		if !ok {
			name, ok = names[NormalizeCategory(key)]
		}
		if !ok {
			name = r.humanize(strings.ReplaceAll(key, "-", " "))
		}
		index[key] = len(out)
		out = append(out, models.DisplayCategory{
			ID:           key,
			Name:         name,
			Color:        r.GetCategoryColor(name),
			Icon:         r.GetCategoryIcon(name),
			PeptideCount: 1,
		})
	}
	return out
}

// DeriveRetailers returns the distinct retailers offering any peptide, in first-seen order.
func (r *Registry) DeriveRetailers(peptides []models.Peptide) []models.DisplayRetailer {
	index := make(map[string]int)
	var out []models.DisplayRetailer
	for _, p := range peptides {
		for _, o := range p.Retailers {
			id := o.RetailerID.String()
			if id == "" {
				continue
			}
			if i, ok := index[id]; ok {
				out[i].OfferCount++
				continue
			}
			name := o.RetailerName
			if name == "" {
				name = r.FormatRetailerName(id)
			}
			index[id] = len(out)
			out = append(out, models.DisplayRetailer{
				ID:         id,
				Name:       name,
				Color:      r.GenerateRetailerColor(id),
				HexColor:   r.GenerateRetailerHexColor(id),
				OfferCount: 1,
			})
		}
	}
	return out
}
