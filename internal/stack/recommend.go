package stack

import (
	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// Recommend returns peptides that serve any of goals, in catalog order. A
// peptide serves a goal when it lists it in recommendedForGoals or when its
// category matches the goal. A non-empty difficulty keeps only peptides whose
// stackDifficulty equals it; peptides without a difficulty hint are kept.
func Recommend(peptides []models.Peptide, goals []string, difficulty models.StackDifficulty) []models.Peptide {
	out := make([]models.Peptide, 0)
	for _, p := range peptides {
		if difficulty != "" && p.StackDifficulty != nil && *p.StackDifficulty != difficulty {
			continue
		}
		if len(goals) > 0 && !servesAny(p, goals) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func servesAny(p models.Peptide, goals []string) bool {
	for _, g := range goals {
		if containsFold(p.RecommendedForGoals, g) {
			return true
		}
		if p.Category != "" && Slugify(p.Category) == Slugify(g) {
			return true
		}
	}
	return false
}

// EstimateCustomStack prices a user-assembled stack. Entries keep the order of
// ids; ids missing from the catalog are reported in UnknownIDs. Duplicate ids
// count once.
func EstimateCustomStack(peptides []models.Peptide, ids []string) models.StackEstimate {
	byID := make(map[string]models.Peptide, len(peptides))
	for _, p := range peptides {
		byID[p.ID.String()] = p
	}

	est := models.StackEstimate{Peptides: make([]models.StackPeptide, 0, len(ids))}
	seen := make(map[string]bool, len(ids))
	var cost float64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, ok := byID[id]
		if !ok {
			est.UnknownIDs = append(est.UnknownIDs, id)
			continue
		}
		est.Peptides = append(est.Peptides, models.StackPeptide{
			PeptideID: id,
			Name:      p.Name,
			Dosage:    tierDosage(p, tiers[0]),
			Duration:  tierDuration(p, tiers[0]),
			Timing:    timing(p),
		})
		cost += AveragePrice(p)
	}
	est.EstimatedCost = round2(cost)
	return est
}
