// Package planview turns the free-text meal plan returned by the generation
// service into typed display blocks, an allergen list and the ingredient list
// used for the supply lookup.
//
// Only the fixed marker vocabulary of the meal-plan prompt is recognised. Text
// without any marker still parses: every line becomes a paragraph.
package planview

// Result is everything derived from one response text.
type Result struct {
	Blocks          []Block  `json:"-"`
	Views           []View   `json:"blocks"`
	Allergens       []string `json:"allergens"`
	IngredientsText string   `json:"ingredientsText"`
}

// Parse is pure: the same text always yields the same Result.
func Parse(text string) Result {
	lines, allergens := ExtractAllergens(SplitLines(text))
	blocks := GroupBlocks(lines)
	return Result{
		Blocks:          blocks,
		Views:           RenderAll(blocks),
		Allergens:       allergens,
		IngredientsText: ExtractIngredients(lines),
	}
}

// OffersIngredientLookup reports whether the ingredient lookup can be run for
// this plan.
func (r Result) OffersIngredientLookup() bool {
	return r.IngredientsText != ""
}
