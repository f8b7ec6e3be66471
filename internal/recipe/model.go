package recipe

import "mealcart/internal/grocery"

// Recipe is a generated or saved recipe. Ingredients are structured
// mentions; the grocery pipeline consumes them read-only.
type Recipe struct {
	ID           string               `json:"id" db:"id"`
	Title        string               `json:"title" db:"title"`
	Description  string               `json:"description" db:"description"`
	Servings     float64              `json:"servings" db:"servings"`
	Ingredients  []grocery.Ingredient `json:"ingredients"`
	Instructions []string             `json:"instructions"`
	Cuisine      string               `json:"cuisine" db:"cuisine"`
	CookingTime  string               `json:"cooking_time" db:"cooking_time"`
}

// Valid reports whether a recipe is usable by the grocery pipeline: every
// ingredient needs a name, a positive finite amount, and a known unit.
func (r *Recipe) Valid() bool {
	if r.Title == "" || len(r.Ingredients) == 0 {
		return false
	}
	for _, ing := range r.Ingredients {
		if ing.Name == "" || ing.Amount <= 0 || !grocery.IsValidUnit(ing.Unit) {
			return false
		}
	}
	return true
}
