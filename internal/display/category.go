package display

import (
	"strings"
	"unicode"
)

// GetCategoryIcon returns the icon for a category using the built-in table.
func GetCategoryIcon(category string) string { return defaultRegistry.GetCategoryIcon(category) }

// GetCategoryColor returns the color classes for a category using the built-in table.
func GetCategoryColor(category string) string { return defaultRegistry.GetCategoryColor(category) }

// minFuzzyLen keeps very short keys from matching everything by containment.
const minFuzzyLen = 3

// NormalizeCategory lowercases s and collapses separator runs into single hyphens.
func NormalizeCategory(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, c := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(c)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// GetCategoryIcon resolves the icon by exact key, then containment, then keyword.
func (r *Registry) GetCategoryIcon(category string) string {
	if style, ok := r.matchCategory(category); ok && style.Icon != "" {
		return style.Icon
	}
	return r.defaultIcon
}

// GetCategoryColor resolves the color like GetCategoryIcon and falls back to a
// hash of the normalized key.
func (r *Registry) GetCategoryColor(category string) string {
	if style, ok := r.matchCategory(category); ok && style.Color != "" {
		return style.Color
	}
	return categoryColorPalette[paletteIndex(NormalizeCategory(category), len(categoryColorPalette))]
}

func (r *Registry) matchCategory(category string) (CategoryStyle, bool) {
	key := NormalizeCategory(category)
	if key == "" {
		return CategoryStyle{}, false
	}
	if style, ok := r.categoryStyles[key]; ok {
		return style, true
	}
	for _, k := range r.categoryKeys {
		if strings.Contains(key, k) || (len(key) >= minFuzzyLen && strings.Contains(k, key)) {
			return r.categoryStyles[k], true
		}
	}
	for _, k := range r.categoryKeys {
		for _, kw := range r.categoryStyles[k].Keywords {
			if len(kw) > 0 && strings.Contains(key, NormalizeCategory(kw)) {
				return r.categoryStyles[k], true
			}
		}
	}
	return CategoryStyle{}, false
}
