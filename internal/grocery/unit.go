package grocery

// Unit is a closed enumeration of the measurement units the grocery list
// understands. Units are partitioned into convertible families: mass and
// volume units convert within their family, everything else is discrete or
// kitchen-volumetric and never converted automatically.
type Unit string

const (
	UnitLb    Unit = "lb"
	UnitOz    Unit = "oz"
	UnitCup   Unit = "cup"
	UnitTbsp  Unit = "tbsp"
	UnitTsp   Unit = "tsp"
	UnitG     Unit = "g"
	UnitKg    Unit = "kg"
	UnitMl    Unit = "ml"
	UnitL     Unit = "l"
	UnitCount Unit = "count"
	UnitSlice Unit = "slice"
	UnitClove Unit = "clove"
	UnitPinch Unit = "pinch"
)

// gramsPerUnit maps each mass-family unit to grams, the family's base.
var gramsPerUnit = map[Unit]float64{
	UnitG:  1,
	UnitKg: 1000,
	UnitOz: 28.349523125,
	UnitLb: 453.59237,
}

// mlPerUnit maps each volume-family unit to millilitres, the family's base.
var mlPerUnit = map[Unit]float64{
	UnitMl: 1,
	UnitL:  1000,
}

// countLikeUnits are purchased whole: you cannot buy 2.3 onions.
var countLikeUnits = map[Unit]bool{
	UnitCount: true,
	UnitSlice: true,
	UnitClove: true,
}

// fractionableUnits are the kitchen units whose amounts read naturally as
// cooking fractions ("1 1/2 cups") rather than decimals.
var fractionableUnits = map[Unit]bool{
	UnitCup:   true,
	UnitTbsp:  true,
	UnitTsp:   true,
	UnitCount: true,
	UnitSlice: true,
	UnitClove: true,
}

// validUnits is the full enumeration, used at the storage boundary to
// reject rows with units this system does not understand.
var validUnits = map[Unit]bool{
	UnitLb: true, UnitOz: true, UnitCup: true, UnitTbsp: true,
	UnitTsp: true, UnitG: true, UnitKg: true, UnitMl: true,
	UnitL: true, UnitCount: true, UnitSlice: true, UnitClove: true,
	UnitPinch: true,
}

// IsValidUnit reports whether u is one of the known units.
func IsValidUnit(u Unit) bool {
	return validUnits[u]
}

// IsMassUnit reports whether u belongs to the mass family.
func IsMassUnit(u Unit) bool {
	_, ok := gramsPerUnit[u]
	return ok
}

// IsVolumeUnit reports whether u belongs to the volume family.
func IsVolumeUnit(u Unit) bool {
	_, ok := mlPerUnit[u]
	return ok
}

// IsCountLike reports whether u is a discrete unit purchased in wholes.
func IsCountLike(u Unit) bool {
	return countLikeUnits[u]
}

// toGrams converts an amount in a mass-family unit to grams.
func toGrams(amount float64, u Unit) (float64, bool) {
	f, ok := gramsPerUnit[u]
	if !ok {
		return 0, false
	}
	return amount * f, true
}

// fromGrams converts grams to a mass-family unit.
func fromGrams(grams float64, u Unit) (float64, bool) {
	f, ok := gramsPerUnit[u]
	if !ok {
		return 0, false
	}
	return grams / f, true
}

// toMl converts an amount in a volume-family unit to millilitres.
func toMl(amount float64, u Unit) (float64, bool) {
	f, ok := mlPerUnit[u]
	if !ok {
		return 0, false
	}
	return amount * f, true
}

// fromMl converts millilitres to a volume-family unit.
func fromMl(ml float64, u Unit) (float64, bool) {
	f, ok := mlPerUnit[u]
	if !ok {
		return 0, false
	}
	return ml / f, true
}
