package watchlist

import "github.com/shopspring/decimal"

// premiumDigits is the significant-digit precision of the premium percentage.
const premiumDigits = 6

// ComputePremium derives the percentage deviation of a local-currency price
// from its USD price converted at the fx rate:
//
//	premium = (local / (usd * fx) - 1) * 100
//
// rounded to 6 significant digits, half away from zero. It returns nil when
// either price or the rate is missing or non-positive: an absent premium, not
// a zero one.
func ComputePremium(priceUSD, priceLocal *decimal.Decimal, fx decimal.Decimal) *decimal.Decimal {
	if priceUSD == nil || priceUSD.Sign() <= 0 || priceLocal == nil || priceLocal.Sign() <= 0 {
		return nil
	}
	if fx.Sign() <= 0 {
		return nil
	}
	reference := priceUSD.Mul(fx)
	if reference.Sign() <= 0 {
		return nil
	}
	premium := priceLocal.Div(reference).
		Sub(decimal.NewFromInt(1)).
		Mul(decimal.NewFromInt(100))
	rounded := roundSignificant(premium, premiumDigits)
	return &rounded
}

// roundSignificant rounds d to the given number of significant digits, half
// away from zero.
func roundSignificant(d decimal.Decimal, digits int) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	// Number of digits left of the decimal point in the absolute value.
	intDigits := len(d.Abs().Truncate(0).String())
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		// "0" contributes no significant digits; count leading zeros in the
		// fraction instead.
		exp := 0
		abs := d.Abs()
		one := decimal.NewFromInt(1)
		for abs.LessThan(one) {
			abs = abs.Shift(1)
			exp++
		}
		return d.Round(int32(digits + exp - 1))
	}
	// A negative place count rounds left of the decimal point.
	return d.Round(int32(digits - intDigits))
}
