package display

import (
	"strings"
	"unicode"
)

var defaultRegistry = NewRegistry()

// Default returns the registry holding the built-in tables.
func Default() *Registry { return defaultRegistry }

// FormatRetailerName returns the display name for a retailer id using the built-in table.
func FormatRetailerName(id string) string { return defaultRegistry.FormatRetailerName(id) }

// GenerateRetailerColor returns the palette class for a retailer id.
func GenerateRetailerColor(id string) string { return defaultRegistry.GenerateRetailerColor(id) }

// GenerateRetailerHexColor returns the hex color for a retailer id.
func GenerateRetailerHexColor(id string) string { return defaultRegistry.GenerateRetailerHexColor(id) }

// FormatRetailerName looks id up in the known retailer table and otherwise
// humanizes it: word breaks at case and digit boundaries, separators become
// spaces, words are title-cased and known abbreviations upper-cased.
func (r *Registry) FormatRetailerName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "Unknown Retailer"
	}
	if name, ok := r.retailerNames[lookupKey(id)]; ok {
		return name
	}
	return r.humanize(id)
}

// GenerateRetailerColor maps id onto the 12-entry class palette.
func (r *Registry) GenerateRetailerColor(id string) string {
	return r.palette[paletteIndex(id, len(r.palette))]
}

// GenerateRetailerHexColor maps id onto the 12-entry hex palette.
func (r *Registry) GenerateRetailerHexColor(id string) string {
	return r.hexPalette[paletteIndex(id, len(r.hexPalette))]
}

func (r *Registry) humanize(id string) string {
	var b strings.Builder
	runes := []rune(id)
	for i, c := range runes {
		if isSeparator(c) {
			b.WriteRune(' ')
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(c) && unicode.IsLower(prev):
				b.WriteRune(' ')
			case unicode.IsDigit(c) && unicode.IsLetter(prev):
				b.WriteRune(' ')
			case unicode.IsLetter(c) && unicode.IsDigit(prev):
				b.WriteRune(' ')
			}
		}
		b.WriteRune(c)
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		upper := strings.ToUpper(w)
		if r.abbreviations[upper] {
			words[i] = upper
			continue
		}
		wr := []rune(strings.ToLower(w))
		wr[0] = unicode.ToUpper(wr[0])
		words[i] = string(wr)
	}
	if len(words) == 0 {
		return "Unknown Retailer"
	}
	return strings.Join(words, " ")
}

func isSeparator(c rune) bool {
	return c == '-' || c == '_' || c == '.' || unicode.IsSpace(c)
}

// lookupKey folds an id to lowercase alphanumerics so "Amino-Asylum" hits "aminoasylum".
func lookupKey(id string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(id) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
