package grocery

import "strings"

// preparationTerms are stripped from ingredient names before comparison.
// "garlic, minced" and "minced garlic" must land on the same list line.
var preparationTerms = []string{
	"minced", "diced", "chopped", "sliced", "crushed", "julienned",
	"grated", "shredded", "peeled", "cubed", "halved", "quartered",
	"whole", "trimmed", "boneless", "skinless", "fresh", "frozen",
	"canned", "dried", "cooked", "raw", "uncooked",
}

var punctuationReplacer = strings.NewReplacer(
	"(", " ", ")", " ",
	"{", " ", "}", " ",
	"[", " ", "]", " ",
	",", " ", ".", " ",
)

// Normalize converts a free-text ingredient name into its comparison key:
// lowercased, punctuation and preparation words removed, naively
// singularized. Deterministic and idempotent. Irregular plurals ("leaves")
// singularize wrong on purpose; consistency is what matters here, not
// linguistics.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = punctuationReplacer.Replace(s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !isPreparationTerm(w) {
			kept = append(kept, w)
		}
	}
	s = strings.Join(kept, " ")

	// Naive singularization: "carrots" -> "carrot", but "glass" stays.
	if len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		s = s[:len(s)-1]
	}
	return s
}

func isPreparationTerm(w string) bool {
	for _, t := range preparationTerms {
		if w == t {
			return true
		}
	}
	return false
}
