package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Invalid-argument errors for installment computation. Callers are expected
// to validate before invoking; these exist so the engine fails fast instead
// of producing nonsense.
var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidRate      = errors.New("interest rate must not be negative")
	ErrInvalidTerm      = errors.New("term must be a positive number of months")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ComputeInstallment returns the fixed monthly payment (EMI) amortizing
// principal over termMonths at the given nominal annual rate, rounded to
// cents.
//
// The monthly rate is r = annualRatePercent / 100 / 12 and the payment is
//
//	P * r * (1+r)^n / ((1+r)^n - 1)
//
// computed entirely in decimal arithmetic: the result feeds debt-limit
// comparisons, where cent-level binary-float drift changes approval outcomes.
// A zero rate (and the degenerate case where the compounding denominator
// vanishes) falls back to a straight-line principal/term split.
func ComputeInstallment(
	principal decimal.Decimal,
	annualRatePercent decimal.Decimal,
	termMonths int,
) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, ErrInvalidTerm
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidPrincipal
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}

	term := decimal.NewFromInt(int64(termMonths))
	monthlyRate := annualRatePercent.Div(hundred).Div(twelve)

	if monthlyRate.IsZero() {
		return principal.Div(term).Round(2), nil
	}

	// (1+r)^n with an integral exponent is exact in decimal arithmetic.
	factor := one.Add(monthlyRate).Pow(term)
	denominator := factor.Sub(one)
	if denominator.IsZero() {
		return principal.Div(term).Round(2), nil
	}

	payment := principal.Mul(monthlyRate).Mul(factor).Div(denominator)
	return payment.Round(2), nil
}
