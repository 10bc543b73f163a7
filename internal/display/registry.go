package display

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CategoryStyle is the icon and color assigned to a category key.
type CategoryStyle struct {
	Icon     string   `yaml:"icon"`
	Color    string   `yaml:"color"`
	Keywords []string `yaml:"keywords"`
}

// Registry holds the lookup tables behind the derivation functions.
// A Registry is read-only once built and safe for concurrent use.
type Registry struct {
	retailerNames  map[string]string
	categoryStyles map[string]CategoryStyle
	categoryKeys   []string
	abbreviations  map[string]bool
	palette        []string
	hexPalette     []string
	defaultIcon    string
}

// Overrides is the YAML document accepted by LoadRegistry.
type Overrides struct {
	RetailerNames map[string]string        `yaml:"retailer_names"`
	Categories    map[string]CategoryStyle `yaml:"categories"`
	DefaultIcon   string                   `yaml:"default_icon"`
}

var retailerColorPalette = []string{
	"bg-blue-500", "bg-emerald-500", "bg-purple-500", "bg-orange-500",
	"bg-pink-500", "bg-teal-500", "bg-indigo-500", "bg-red-500",
	"bg-cyan-500", "bg-amber-500", "bg-lime-500", "bg-fuchsia-500",
}

var retailerHexPalette = []string{
	"#3B82F6", "#10B981", "#8B5CF6", "#F97316",
	"#EC4899", "#14B8A6", "#6366F1", "#EF4444",
	"#06B6D4", "#F59E0B", "#84CC16", "#D946EF",
}

var knownRetailerNames = map[string]string{
	"aminoasylum":       "Amino Asylum",
	"peptidesciences":   "Peptide Sciences",
	"corepeptides":      "Core Peptides",
	"swisschems":        "Swiss Chems",
	"purerawz":          "Pure Rawz",
	"limitlessbiotech":  "Limitless Biotech",
	"biotechpeptides":   "Biotech Peptides",
	"paradigmpeptides":  "Paradigm Peptides",
	"sportstechnology":  "Sports Technology Labs",
	"amazingpeptides":   "Amazing Peptides",
	"researchpeptides":  "Research Peptides",
	"ascensionpeptides": "Ascension Peptides",
}

var knownCategoryStyles = map[string]CategoryStyle{
	"weight-loss":   {Icon: "Scale", Color: "bg-green-100 text-green-800", Keywords: []string{"fat", "slim", "metabolic", "glp"}},
	"muscle-growth": {Icon: "Dumbbell", Color: "bg-blue-100 text-blue-800", Keywords: []string{"muscle", "growth", "gh", "strength"}},
	"recovery":      {Icon: "HeartPulse", Color: "bg-red-100 text-red-800", Keywords: []string{"healing", "repair", "injury", "tissue"}},
	"anti-aging":    {Icon: "Sparkles", Color: "bg-purple-100 text-purple-800", Keywords: []string{"aging", "longevity", "age"}},
	"cognitive":     {Icon: "Brain", Color: "bg-indigo-100 text-indigo-800", Keywords: []string{"nootropic", "brain", "focus", "memory"}},
	"sleep":         {Icon: "Moon", Color: "bg-slate-100 text-slate-800", Keywords: []string{"rest", "circadian"}},
	"immune":        {Icon: "Shield", Color: "bg-yellow-100 text-yellow-800", Keywords: []string{"immunity", "defense"}},
	"sexual-health": {Icon: "Heart", Color: "bg-pink-100 text-pink-800", Keywords: []string{"libido", "sexual"}},
	"skin":          {Icon: "Sun", Color: "bg-orange-100 text-orange-800", Keywords: []string{"tanning", "hair", "collagen"}},
	"gut-health":    {Icon: "Activity", Color: "bg-teal-100 text-teal-800", Keywords: []string{"gut", "digestive"}},
}

var categoryColorPalette = []string{
	"bg-blue-100 text-blue-800", "bg-green-100 text-green-800", "bg-purple-100 text-purple-800",
	"bg-orange-100 text-orange-800", "bg-pink-100 text-pink-800", "bg-teal-100 text-teal-800",
	"bg-indigo-100 text-indigo-800", "bg-red-100 text-red-800", "bg-cyan-100 text-cyan-800",
	"bg-amber-100 text-amber-800", "bg-lime-100 text-lime-800", "bg-fuchsia-100 text-fuchsia-800",
}

var abbreviations = []string{"LLC", "CO", "INC", "LTD", "USA", "UK", "EU"}

// NewRegistry returns a Registry holding the built-in tables.
func NewRegistry() *Registry {
	r := &Registry{
		retailerNames:  make(map[string]string, len(knownRetailerNames)),
		categoryStyles: make(map[string]CategoryStyle, len(knownCategoryStyles)),
		abbreviations:  make(map[string]bool, len(abbreviations)),
		palette:        retailerColorPalette,
		hexPalette:     retailerHexPalette,
		defaultIcon:    "FlaskConical",
	}
	for k, v := range knownRetailerNames {
		r.retailerNames[k] = v
	}
	for k, v := range knownCategoryStyles {
		r.categoryStyles[k] = v
	}
	for _, a := range abbreviations {
		r.abbreviations[a] = true
	}
	r.sortKeys()
	return r
}

// LoadRegistry builds the default registry and overlays the YAML file at path.
// An empty path returns the defaults.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read display overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("parse display overrides: %w", err)
	}
	r.Apply(o)
	return r, nil
}

// Apply merges o into the registry tables. It must run before the registry is shared.
func (r *Registry) Apply(o Overrides) {
	for k, v := range o.RetailerNames {
		r.retailerNames[lookupKey(k)] = v
	}
	for k, v := range o.Categories {
		key := NormalizeCategory(k)
		if existing, ok := r.categoryStyles[key]; ok {
			if v.Icon == "" {
				v.Icon = existing.Icon
			}
			if v.Color == "" {
				v.Color = existing.Color
			}
			if len(v.Keywords) == 0 {
				v.Keywords = existing.Keywords
			}
		}
		r.categoryStyles[key] = v
	}
	if o.DefaultIcon != "" {
		r.defaultIcon = o.DefaultIcon
	}
	r.sortKeys()
}

// sortKeys fixes the order of fuzzy matching so lookups are deterministic.
func (r *Registry) sortKeys() {
	r.categoryKeys = r.categoryKeys[:0]
	for k := range r.categoryStyles {
		r.categoryKeys = append(r.categoryKeys, k)
	}
	sort.Strings(r.categoryKeys)
}
