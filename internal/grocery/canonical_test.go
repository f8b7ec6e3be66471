package grocery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestCanonicalizeFallback(t *testing.T) {
	tests := []struct {
		name       string
		in         Ingredient
		wantAmount float64
		wantUnit   Unit
	}{
		{
			"meat oz to lb",
			Ingredient{Name: "chicken breast", Amount: 8, Unit: UnitOz, Category: "Meat"},
			0.5, UnitLb,
		},
		{
			"meat lb stays lb",
			Ingredient{Name: "ground beef", Amount: 1, Unit: UnitLb, Category: "Meat"},
			1, UnitLb,
		},
		{
			"non-meat oz passes through",
			Ingredient{Name: "mushrooms", Amount: 8, Unit: UnitOz, Category: "Produce"},
			8, UnitOz,
		},
		{
			"litres to ml",
			Ingredient{Name: "vegetable stock", Amount: 1.5, Unit: UnitL},
			1500, UnitMl,
		},
		{
			"kg to g",
			Ingredient{Name: "flour", Amount: 2, Unit: UnitKg},
			2000, UnitG,
		},
		{
			"cup passes through",
			Ingredient{Name: "rice", Amount: 2, Unit: UnitCup},
			2, UnitCup,
		},
		{
			"count passes through",
			Ingredient{Name: "onion", Amount: 1, Unit: UnitCount},
			1, UnitCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.in, nil)
			assert.InDelta(t, tt.wantAmount, got.Amount, 1e-9)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.Equal(t, Normalize(tt.in.Name), got.NameNormalized)
			assert.Equal(t, tt.in.Name, got.DisplayName)
		})
	}
}

func TestCanonicalizeWithProfile(t *testing.T) {
	t.Run("mass to count via grams_per_count", func(t *testing.T) {
		profile := &UnitProfile{
			NameNormalized: "onion",
			CanonicalUnit:  UnitCount,
			GramsPerCount:  f64(150),
			DisplayName:    "Onion",
		}
		got := Canonicalize(Ingredient{Name: "onions", Amount: 300, Unit: UnitG}, profile)
		assert.InDelta(t, 2, got.Amount, 1e-9)
		assert.Equal(t, UnitCount, got.Unit)
		assert.Equal(t, "Onion", got.DisplayName)
	})

	t.Run("volume to count via ml_per_count", func(t *testing.T) {
		profile := &UnitProfile{
			NameNormalized: "egg",
			CanonicalUnit:  UnitCount,
			MlPerCount:     f64(50),
		}
		got := Canonicalize(Ingredient{Name: "eggs", Amount: 100, Unit: UnitMl}, profile)
		assert.InDelta(t, 2, got.Amount, 1e-9)
		assert.Equal(t, UnitCount, got.Unit)
	})

	t.Run("clove canonical never converts", func(t *testing.T) {
		profile := &UnitProfile{NameNormalized: "garlic", CanonicalUnit: UnitClove}
		got := Canonicalize(Ingredient{Name: "garlic", Amount: 2, Unit: UnitTsp}, profile)
		assert.Equal(t, 2.0, got.Amount)
		assert.Equal(t, UnitTsp, got.Unit)
	})

	t.Run("mass family toward canonical", func(t *testing.T) {
		profile := &UnitProfile{NameNormalized: "ground beef", CanonicalUnit: UnitLb}
		got := Canonicalize(Ingredient{Name: "ground beef", Amount: 453.59237, Unit: UnitG}, profile)
		assert.InDelta(t, 1, got.Amount, 1e-9)
		assert.Equal(t, UnitLb, got.Unit)
	})

	t.Run("volume family toward canonical", func(t *testing.T) {
		profile := &UnitProfile{NameNormalized: "milk", CanonicalUnit: UnitL}
		got := Canonicalize(Ingredient{Name: "milk", Amount: 500, Unit: UnitMl}, profile)
		assert.InDelta(t, 0.5, got.Amount, 1e-9)
		assert.Equal(t, UnitL, got.Unit)
	})

	t.Run("no conversion path passes through", func(t *testing.T) {
		profile := &UnitProfile{NameNormalized: "rice", CanonicalUnit: UnitCup}
		got := Canonicalize(Ingredient{Name: "rice", Amount: 200, Unit: UnitG}, profile)
		assert.Equal(t, 200.0, got.Amount)
		assert.Equal(t, UnitG, got.Unit)
	})

	t.Run("same unit passes through", func(t *testing.T) {
		profile := &UnitProfile{NameNormalized: "onion", CanonicalUnit: UnitCount, GramsPerCount: f64(150)}
		got := Canonicalize(Ingredient{Name: "onion", Amount: 3, Unit: UnitCount}, profile)
		assert.Equal(t, 3.0, got.Amount)
		assert.Equal(t, UnitCount, got.Unit)
	})
}

func TestCanonicalizeNonFinite(t *testing.T) {
	// A zero grams_per_count cannot produce Inf; a NaN amount survives as-is.
	got := Canonicalize(Ingredient{Name: "flour", Amount: math.NaN(), Unit: UnitG}, nil)
	assert.True(t, math.IsNaN(got.Amount))
	assert.Equal(t, UnitG, got.Unit)
}
