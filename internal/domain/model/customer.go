package model

import (
	"github.com/shopspring/decimal"
)

// Customer is the financial snapshot a credit decision is made against.
// It is an immutable input value: the engine never mutates it, and debt
// updates happen only through the booking transaction.
type Customer struct {
	ID            string
	MonthlySalary decimal.Decimal
	CurrentDebt   decimal.Decimal
	ApprovedLimit decimal.Decimal
}

// approvedLimitMultiple is the onboarding default: a customer may hold up to
// 36 months of salary in outstanding principal.
var approvedLimitMultiple = decimal.NewFromInt(36)

// DeriveApprovedLimit computes the default approved credit limit from monthly
// salary. Callers may pre-supply a different limit; this is only the default.
func DeriveApprovedLimit(monthlySalary decimal.Decimal) decimal.Decimal {
	return monthlySalary.Mul(approvedLimitMultiple)
}

// OverLimit reports whether current debt already exceeds the approved limit.
// A pre-existing violation is valid input; it simply guarantees rejection of
// any further borrowing.
func (c Customer) OverLimit() bool {
	return c.CurrentDebt.GreaterThan(c.ApprovedLimit)
}
