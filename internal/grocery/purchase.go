package grocery

import "math"

// PurchaseFor computes how much of an entry to actually buy, honoring
// real-world packaging: meat comes in whole pounds, count-like items come
// whole, profiled items come in pack multiples. Presentation-time only;
// the stored entry is never touched.
func PurchaseFor(entry Entry, profile *UnitProfile) Purchase {
	p := Purchase{
		NeedAmount: entry.Amount,
		NeedUnit:   entry.Unit,
		BuyAmount:  entry.Amount,
		BuyUnit:    string(entry.Unit),
	}

	switch {
	case isMeat(entry.Category) && (entry.Unit == UnitLb || entry.Unit == UnitOz):
		needLb := entry.Amount
		if entry.Unit == UnitOz {
			grams, _ := toGrams(entry.Amount, UnitOz)
			needLb, _ = fromGrams(grams, UnitLb)
		}
		// Never less than a pound of meat, always a whole number of pounds.
		p.BuyAmount = math.Ceil(math.Max(1, needLb))
		p.BuyUnit = string(UnitLb)
		p.Reason = "meat is sold by the pound"

	case IsCountLike(entry.Unit):
		p.BuyAmount = math.Ceil(math.Max(0, entry.Amount))
		p.Reason = "purchased whole"

	case hasPackSize(profile) && entry.Unit == *profile.PackSizeUnit:
		packSize := *profile.PackSizeAmount
		packs := math.Ceil(entry.Amount / packSize)
		if profile.BuyUnitLabel != "" {
			p.BuyAmount = packs
			p.BuyUnit = profile.BuyUnitLabel
		} else {
			p.BuyAmount = packs * packSize
		}
		p.Reason = "rounded up to pack size"
	}

	if isNonFinite(p.BuyAmount) || p.BuyAmount < 0 {
		p.BuyAmount = 0
	}
	p.NeedAmount = roundTo2(p.NeedAmount)
	p.BuyAmount = roundTo2(p.BuyAmount)
	return p
}

func hasPackSize(p *UnitProfile) bool {
	return p != nil && p.PackSizeAmount != nil && *p.PackSizeAmount > 0 && p.PackSizeUnit != nil
}

// roundTo2 rounds half-up to two decimals. The tiny nudge keeps values
// like 2.675, which binary floating point stores just under the true
// value, from truncating down.
func roundTo2(f float64) float64 {
	if isNonFinite(f) {
		return 0
	}
	return math.Round(f*100+1e-9) / 100
}
