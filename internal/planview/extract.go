package planview

import "strings"

// ExtractAllergens removes every allergen-warning line from lines and parses
// the allergen names out of it. If the text carries more than one warning
// line, the last one wins. The returned slice is never nil.
func ExtractAllergens(lines []Line) ([]Line, []string) {
	filtered := make([]Line, 0, len(lines))
	var warning string
	var found bool
	for _, l := range lines {
		if strings.HasPrefix(l.Text, AllergenMarker) {
			warning = l.Text
			found = true
			continue
		}
		filtered = append(filtered, l)
	}

	allergens := []string{}
	if !found {
		return filtered, allergens
	}
	rest := strings.TrimFunc(strings.TrimPrefix(warning, AllergenMarker), isTrimmable)
	for _, name := range strings.Split(rest, ",") {
		if name = strings.TrimFunc(name, isTrimmable); name != "" {
			allergens = append(allergens, name)
		}
	}
	return filtered, allergens
}

// ExtractIngredients collects the unordered items of the ingredient section
// and joins them with newlines. The section starts after the "🛒 재료" line and
// ends at a cooking-steps, hints or recipe-section line. Other lines inside
// the section are skipped. lines is not modified.
func ExtractIngredients(lines []Line) string {
	var items []string
	inside := false
	for _, l := range lines {
		switch {
		case !inside && strings.HasPrefix(l.Text, IngredientSectionMarker):
			inside = true
		case !inside:
		case hasAnyPrefix(l.Text, ingredientSectionClosers...):
			inside = false
		case strings.HasPrefix(l.Text, UnorderedItemMarker):
			items = append(items, l.Text[len(UnorderedItemMarker):])
		}
	}
	return strings.Join(items, "\n")
}
