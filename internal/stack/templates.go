package stack

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// DefaultTiming is used when a peptide carries no stack timing hint.
const DefaultTiming = "As directed by research protocols"

type tier struct {
	difficulty    models.StackDifficulty
	minPeptides   int
	maxPeptides   int
	defaultWeeks  int
	useSecondDose bool
	blurb         string
}

var tiers = []tier{
	{models.DifficultyBeginner, 1, 2, 8, false, "An entry-level %s stack built from the most established compounds in the category."},
	{models.DifficultyIntermediate, 2, 3, 10, false, "A broader %s stack for researchers already familiar with the basics."},
	{models.DifficultyAdvanced, 3, 4, 12, true, "A comprehensive %s protocol with higher research dosing."},
}

// GenerateTemplates builds Beginner/Intermediate/Advanced templates for every
// category that has matching peptides, in category order then tier order.
// When nothing matches it groups peptides by their raw category string, and
// as a last resort emits a single starter stack. It never fails.
func GenerateTemplates(peptides []models.Peptide, categories []models.Category) []models.StackTemplate {
	templates := make([]models.StackTemplate, 0)

	for _, cat := range categories {
		matched := peptidesForCategory(peptides, cat)
		if len(matched) == 0 {
			continue
		}
		templates = append(templates, templatesForGroup(cat.ID.String(), cat.Name, matched)...)
	}
	if len(templates) > 0 {
		return templates
	}

	for _, g := range groupByRawCategory(peptides) {
		t := buildTemplate(g.key, displayName(g.key), g.peptides, tiers[0])
		templates = append(templates, t)
	}
	if len(templates) > 0 {
		return templates
	}

	if len(peptides) == 0 {
		return templates
	}
	starter := buildTemplate("general", "General", peptides, tiers[0])
	starter.ID = "starter-research-stack"
	starter.Name = "Starter Research Stack"
	starter.Description = "A simple starting point built from the first compounds in the catalog."
	starter.Goals = []string{"general"}
	return append(templates, starter)
}

// FilterTemplates keeps templates matching goal (when set) and difficulty (when set).
func FilterTemplates(templates []models.StackTemplate, goal string, difficulty models.StackDifficulty) []models.StackTemplate {
	out := make([]models.StackTemplate, 0, len(templates))
	for _, t := range templates {
		if difficulty != "" && t.Difficulty != difficulty {
			continue
		}
		if goal != "" && !containsFold(t.Goals, goal) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MatchesCategory reports whether a peptide's category key refers to cat by
// id, slugified name or raw name. Upstream data uses all three forms.
func MatchesCategory(key string, cat models.Category) bool {
	if key == "" {
		return false
	}
	return key == cat.ID.String() || key == Slugify(cat.Name) || key == cat.Name
}

// Slugify lowercases s and joins words with hyphens.
func Slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func peptidesForCategory(peptides []models.Peptide, cat models.Category) []models.Peptide {
	var out []models.Peptide
	for _, p := range peptides {
		if MatchesCategory(p.Category, cat) {
			out = append(out, p)
		}
	}
	return out
}

func templatesForGroup(key, name string, group []models.Peptide) []models.StackTemplate {
	var out []models.StackTemplate
	for _, t := range tiers {
		if len(group) < t.minPeptides {
			break
		}
		out = append(out, buildTemplate(key, name, group, t))
	}
	return out
}

func buildTemplate(key, name string, group []models.Peptide, t tier) models.StackTemplate {
	n := t.maxPeptides
	if len(group) < n {
		n = len(group)
	}
	selected := group[:n]

	entries := make([]models.StackPeptide, 0, n)
	var cost float64
	for _, p := range selected {
		entries = append(entries, models.StackPeptide{
			PeptideID: p.ID.String(),
			Name:      p.Name,
			Dosage:    tierDosage(p, t),
			Duration:  tierDuration(p, t),
			Timing:    timing(p),
		})
		cost += AveragePrice(p)
	}

	return models.StackTemplate{
		ID:            fmt.Sprintf("%s-%s", Slugify(key), strings.ToLower(string(t.difficulty))),
		Name:          fmt.Sprintf("%s %s Stack", t.difficulty, name),
		Description:   fmt.Sprintf(t.blurb, strings.ToLower(name)),
		Goals:         []string{key},
		Peptides:      entries,
		EstimatedCost: round2(cost),
		Difficulty:    t.difficulty,
	}
}

func tierDosage(p models.Peptide, t tier) string {
	if t.useSecondDose && len(p.Dosages) > 1 {
		return p.Dosages[1]
	}
	if len(p.Dosages) > 0 {
		return p.Dosages[0]
	}
	if p.StartingDose != nil {
		return *p.StartingDose
	}
	return ""
}

func tierDuration(p models.Peptide, t tier) string {
	weeks := t.defaultWeeks
	if p.StackDuration != nil && *p.StackDuration > 0 {
		weeks = *p.StackDuration
	}
	return fmt.Sprintf("%d weeks", weeks)
}

func timing(p models.Peptide) string {
	if p.StackTiming != nil && strings.TrimSpace(*p.StackTiming) != "" {
		return *p.StackTiming
	}
	return DefaultTiming
}

// AveragePrice averages the effective price across offers with a positive list
// price. Peptides without such offers cost 0.
func AveragePrice(p models.Peptide) float64 {
	var sum float64
	var n int
	for _, o := range p.Retailers {
		if o.Price <= 0 {
			continue
		}
		sum += o.EffectivePrice()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

type rawGroup struct {
	key      string
	peptides []models.Peptide
}

// groupByRawCategory groups peptides by category string in first-seen order.
// Peptides without a category are left out.
func groupByRawCategory(peptides []models.Peptide) []rawGroup {
	index := make(map[string]int)
	var groups []rawGroup
	for _, p := range peptides {
		if p.Category == "" {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, rawGroup{key: p.Category})
		}
		groups[i].peptides = append(groups[i].peptides, p)
	}
	return groups
}

func displayName(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) || Slugify(v) == Slugify(s) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
