package planview

import (
	"regexp"
	"strings"
)

// Markers emitted by the meal-plan prompt. They must match the generated text
// exactly, including emoji variation selectors and zero-width joiners.
const (
	AllergenMarker      = "⚠️ 알레르기 정보:"
	TitleMarker         = "🗓️"
	RecipeSectionMarker = "[메인 메뉴 레시피"

	AnalysisMarker     = "🔍"
	DishMarker         = "🥘"
	TipsMarker         = "✨"
	StatsMarker        = "📊"
	ShoppingListMarker = "🛒"
	CookingStepsMarker = "🧑‍🍳"
	HintsMarker        = "💡"

	// IngredientSectionMarker opens the section mined for ingredient names.
	IngredientSectionMarker = ShoppingListMarker + " 재료"

	UnorderedItemMarker = "- "
)

// MenuLabelMarkers prefix the dish lines of the daily menu.
var MenuLabelMarkers = []string{"🍽️", "🍲", "🍚", "🥬", "🥗", "🥤"}

// NamedSectionMarkers prefix lines rendered as a title with an optional body.
var NamedSectionMarkers = []string{
	AnalysisMarker,
	DishMarker,
	TipsMarker,
	StatsMarker,
	ShoppingListMarker,
	CookingStepsMarker,
	HintsMarker,
}

// ingredientSectionClosers end the ingredient section.
var ingredientSectionClosers = []string{CookingStepsMarker, HintsMarker, RecipeSectionMarker}

var orderedItemPattern = regexp.MustCompile(`^\d+\.[\s\x{00A0}]`)

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
