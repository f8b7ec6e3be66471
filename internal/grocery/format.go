package grocery

import (
	"fmt"
	"math"
	"strconv"
)

// fractionDenominators in preference order: halves before thirds before
// quarters before eighths, so 0.5 reads "1/2" and never "4/8".
var fractionDenominators = []int{2, 3, 4, 8}

// fractionTolerance is how far a snapped fraction may sit from the true
// amount and still be shown as that fraction.
const fractionTolerance = 0.02

// FormatAmount renders a quantity for display. Small amounts of kitchen
// units are shown as mixed cooking fractions ("1 1/2"); everything else is
// a 2-decimal number with trailing zeros stripped. Non-finite input
// renders "0".
func FormatAmount(amount float64, unit Unit) string {
	if isNonFinite(amount) {
		return "0"
	}

	if fractionableUnits[unit] && amount > 0 && amount < 10 {
		if s, ok := formatFraction(amount); ok {
			return s
		}
	}

	rounded := roundTo2(amount)
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// formatFraction tries each preferred denominator and renders the first
// one whose grid lands within tolerance of the true amount.
func formatFraction(amount float64) (string, bool) {
	for _, den := range fractionDenominators {
		snapped := math.Round(amount*float64(den)) / float64(den)
		if math.Abs(snapped-amount) > fractionTolerance {
			continue
		}

		whole := int(snapped)
		num := int(math.Round((snapped - float64(whole)) * float64(den)))
		if num == 0 {
			return strconv.Itoa(whole), true
		}

		d := den
		if g := gcd(num, d); g > 1 {
			num /= g
			d /= g
		}
		if whole == 0 {
			return fmt.Sprintf("%d/%d", num, d), true
		}
		return fmt.Sprintf("%d %d/%d", whole, num, d), true
	}
	return "", false
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
