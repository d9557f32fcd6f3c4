package emission

import (
	"github.com/shopspring/decimal"

	"esg-assessment-service/internal/domain"
)

// Digit bounds for the calculation inputs and result. Values violating a
// bound are rejected outright, never clamped.
const (
	activityIntDigits  = 12
	activityFracDigits = 3
	factorIntDigits    = 9
	factorFracDigits   = 6
	totalIntDigits     = 15
	totalFracDigits    = 6
)

// Calculate multiplies an activity amount by an emission factor under the
// table's digit constraints and returns the total emission rounded
// half-away-from-zero to six fractional digits.
//
// Inputs arrive as strings because the upstream captures them from form
// fields; parsing through decimal avoids float drift entirely, so
// Calculate("1000", "2.5") is exactly 2500.000000.
func Calculate(activityAmount, emissionFactor string) (decimal.Decimal, error) {
	amount, err := parseBounded("activity amount", activityAmount, activityIntDigits, activityFracDigits)
	if err != nil {
		return decimal.Zero, err
	}
	factor, err := parseBounded("emission factor", emissionFactor, factorIntDigits, factorFracDigits)
	if err != nil {
		return decimal.Zero, err
	}

	total := amount.Mul(factor).Round(totalFracDigits)
	if intDigits(total) > totalIntDigits {
		return decimal.Zero, domain.Errorf(domain.KindInvalidValue,
			"total emission exceeds %d integer digits", totalIntDigits)
	}
	return total, nil
}

// Format renders a calculated total with the fixed six fractional digits the
// table stores.
func Format(total decimal.Decimal) string {
	return total.StringFixed(totalFracDigits)
}

func parseBounded(name, raw string, maxInt, maxFrac int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.Errorf(domain.KindInvalidValue, "%s %q is not a number", name, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, domain.Errorf(domain.KindInvalidValue, "%s must not be negative", name)
	}
	if int(-d.Exponent()) > maxFrac {
		return decimal.Zero, domain.Errorf(domain.KindInvalidValue,
			"%s exceeds %d fractional digits", name, maxFrac)
	}
	if intDigits(d) > maxInt {
		return decimal.Zero, domain.Errorf(domain.KindInvalidValue,
			"%s exceeds %d integer digits", name, maxInt)
	}
	return d, nil
}

// intDigits counts the digits of the integer part; zero counts as one digit.
func intDigits(d decimal.Decimal) int {
	s := d.Abs().Truncate(0).String()
	return len(s)
}
