package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanRecord is a single loan held by a customer. Historical records are
// immutable inputs to credit scoring; a new record is created only when a
// requested loan is approved and booked.
type LoanRecord struct {
	ID                 string
	CustomerID         string
	Principal          decimal.Decimal
	TermMonths         int
	AnnualRatePercent  decimal.Decimal
	MonthlyInstallment decimal.Decimal
	PeriodsPaidOnTime  int
	Approved           bool
	ApprovalDate       time.Time // zero when never approved
	EndDate            time.Time // zero when unknown
}

// NewApprovedLoan creates the record persisted when a requested loan is
// approved. The end date is the approval date plus the term; no periods have
// been paid yet.
func NewApprovedLoan(
	customerID string,
	principal decimal.Decimal,
	annualRatePercent decimal.Decimal,
	termMonths int,
	monthlyInstallment decimal.Decimal,
	now time.Time,
) LoanRecord {
	approved := dateOf(now)
	return LoanRecord{
		ID:                 uuid.New().String(),
		CustomerID:         customerID,
		Principal:          principal,
		TermMonths:         termMonths,
		AnnualRatePercent:  annualRatePercent,
		MonthlyInstallment: monthlyInstallment,
		Approved:           true,
		ApprovalDate:       approved,
		EndDate:            approved.AddDate(0, termMonths, 0),
	}
}

// ActiveAsOf reports whether the loan still contributes to the customer's
// monthly repayment burden: it was approved and its end date is on or after
// the given date. Records without an end date are never active.
func (r LoanRecord) ActiveAsOf(t time.Time) bool {
	if !r.Approved || r.EndDate.IsZero() {
		return false
	}
	return !r.EndDate.Before(dateOf(t))
}

// RepaymentsLeft is the number of periods not yet paid on schedule.
func (r LoanRecord) RepaymentsLeft() int {
	return r.TermMonths - r.PeriodsPaidOnTime
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
