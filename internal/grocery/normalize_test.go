package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  Carrot ", "carrot"},
		{"punctuation to spaces", "garlic, (minced)", "garlic"},
		{"prep term at end", "garlic minced", "garlic"},
		{"prep term at start", "minced garlic", "garlic"},
		{"prep term in middle", "chicken boneless breast", "chicken breast"},
		{"multiple prep terms", "fresh chopped flat-leaf parsley", "flat-leaf parsley"},
		{"plural stripped", "carrots", "carrot"},
		{"ss not stripped", "glass", "glass"},
		{"short word keeps s", "pea", "pea"},
		{"whitespace collapsed", "red   bell   peppers", "red bell pepper"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Garlic, Minced", "carrots", "2% milk", "glass noodles",
		"Boneless Skinless Chicken Thighs", "fresh basil leaves",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize(%q) not idempotent", in)
	}
}

func TestNormalizeMergesPreparationVariants(t *testing.T) {
	assert.Equal(t, Normalize("garlic"), Normalize("garlic, minced"))
	assert.Equal(t, Normalize("garlic"), Normalize("minced garlic"))
	assert.Equal(t, Normalize("carrot"), Normalize("carrots"))
}
