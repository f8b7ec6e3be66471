package grocery

// Ingredient is one ingredient as it appears within a recipe: free-text
// name, a positive amount, and a unit. Category drives purchase rules
// ("meat" is sold by the pound) and list grouping.
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     Unit    `json:"unit"`
	Category string  `json:"category,omitempty"`
}

// UnitProfile is curated reference data for one normalized ingredient name.
// It tells the canonicalizer what unit the ingredient should be stored in
// and the purchase calculator how the ingredient is packaged. Absence of a
// profile is a normal state, not an error.
type UnitProfile struct {
	NameNormalized string   `json:"name_normalized" db:"name_normalized"`
	CanonicalUnit  Unit     `json:"canonical_unit" db:"canonical_unit"`
	GramsPerCount  *float64 `json:"grams_per_count,omitempty" db:"grams_per_count"`
	MlPerCount     *float64 `json:"ml_per_count,omitempty" db:"ml_per_count"`
	PackSizeAmount *float64 `json:"pack_size_amount,omitempty" db:"pack_size_amount"`
	PackSizeUnit   *Unit    `json:"pack_size_unit,omitempty" db:"pack_size_unit"`
	DisplayName    string   `json:"display_name,omitempty" db:"display_name"`
	ExcludeAlways  bool     `json:"exclude_always" db:"exclude_always"`
	PantryStaple   bool     `json:"pantry_staple" db:"pantry_staple"`
	BuyUnitLabel   string   `json:"buy_unit_label,omitempty" db:"buy_unit_label"`
}

// Entry is one persisted, aggregated grocery list line. At most one entry
// exists per (user, name_normalized, unit); that pair is the aggregation
// key, so the same ingredient in two incompatible units is two lines.
type Entry struct {
	ID             string  `json:"id" db:"id"`
	UserID         string  `json:"user_id" db:"user_id"`
	Name           string  `json:"name" db:"name"`
	NameNormalized string  `json:"name_normalized" db:"name_normalized"`
	Amount         float64 `json:"amount" db:"amount"`
	Unit           Unit    `json:"unit" db:"unit"`
	Category       string  `json:"category" db:"category"`
	IsChecked      bool    `json:"is_checked" db:"is_checked"`
}

// Canonical is the output of canonicalization: an ingredient contribution
// expressed in the unit it will be aggregated in. Never persisted on its
// own; it only exists on its way into an Entry.
type Canonical struct {
	NameNormalized string
	DisplayName    string
	Amount         float64
	Unit           Unit
	Category       string
}

// Purchase describes how much of an entry to actually buy, as opposed to
// how much the recipes need. Derived at presentation time, never stored.
// BuyUnit is a string rather than a Unit because profiles may relabel the
// purchase ("2 bags" instead of "900 g").
type Purchase struct {
	NeedAmount float64 `json:"need_amount"`
	NeedUnit   Unit    `json:"need_unit"`
	BuyAmount  float64 `json:"buy_amount"`
	BuyUnit    string  `json:"buy_unit"`
	Reason     string  `json:"reason,omitempty"`
}

// DefaultCategory is assigned to contributions that arrive without one.
const DefaultCategory = "Other"
