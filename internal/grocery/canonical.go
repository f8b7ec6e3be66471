package grocery

import (
	"math"
	"strings"
)

// Canonicalize converts one ingredient mention into the form it will be
// aggregated in. With a profile, conversion aims at the profile's canonical
// unit; without one, only safe same-family conversions apply (meat to lb,
// volume to ml, kg to g) and everything else passes through untouched.
// No rounding happens here; that is deferred to formatting and purchase
// calculation.
func Canonicalize(ing Ingredient, profile *UnitProfile) Canonical {
	c := Canonical{
		NameNormalized: Normalize(ing.Name),
		DisplayName:    ing.Name,
		Amount:         ing.Amount,
		Unit:           ing.Unit,
		Category:       ing.Category,
	}

	if profile == nil {
		c.Amount, c.Unit = fallbackConvert(ing)
	} else {
		if profile.DisplayName != "" {
			c.DisplayName = profile.DisplayName
		}
		c.Amount, c.Unit = profileConvert(ing, profile)
	}

	// A conversion that produced NaN or Inf keeps the original numbers
	// rather than propagating garbage into the list.
	if math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
		c.Amount = ing.Amount
		c.Unit = ing.Unit
	}
	return c
}

// fallbackConvert applies the safe, profile-free conversions only.
func fallbackConvert(ing Ingredient) (float64, Unit) {
	switch {
	case isMeat(ing.Category) && (ing.Unit == UnitOz || ing.Unit == UnitLb):
		grams, _ := toGrams(ing.Amount, ing.Unit)
		lb, _ := fromGrams(grams, UnitLb)
		return lb, UnitLb
	case ing.Unit == UnitL || ing.Unit == UnitMl:
		ml, _ := toMl(ing.Amount, ing.Unit)
		return ml, UnitMl
	case ing.Unit == UnitKg || ing.Unit == UnitG:
		grams, _ := toGrams(ing.Amount, ing.Unit)
		return grams, UnitG
	}
	return ing.Amount, ing.Unit
}

// profileConvert converts toward the profile's canonical unit where a path
// exists, passing through otherwise.
func profileConvert(ing Ingredient, p *UnitProfile) (float64, Unit) {
	target := p.CanonicalUnit
	if ing.Unit == target {
		return ing.Amount, ing.Unit
	}

	// Cloves are never converted: there is no defensible grams-per-clove
	// across garlic sizes, so mentions keep their original unit.
	if target == UnitClove {
		return ing.Amount, ing.Unit
	}

	if target == UnitCount {
		if p.GramsPerCount != nil && *p.GramsPerCount > 0 && IsMassUnit(ing.Unit) {
			grams, _ := toGrams(ing.Amount, ing.Unit)
			return grams / *p.GramsPerCount, UnitCount
		}
		if p.MlPerCount != nil && *p.MlPerCount > 0 && IsVolumeUnit(ing.Unit) {
			ml, _ := toMl(ing.Amount, ing.Unit)
			return ml / *p.MlPerCount, UnitCount
		}
		return ing.Amount, ing.Unit
	}

	if IsMassUnit(target) && IsMassUnit(ing.Unit) {
		grams, _ := toGrams(ing.Amount, ing.Unit)
		out, _ := fromGrams(grams, target)
		return out, target
	}
	if IsVolumeUnit(target) && IsVolumeUnit(ing.Unit) {
		ml, _ := toMl(ing.Amount, ing.Unit)
		out, _ := fromMl(ml, target)
		return out, target
	}

	return ing.Amount, ing.Unit
}

func isMeat(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), "meat")
}
