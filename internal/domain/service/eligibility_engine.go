package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/novabank/credit-engine/internal/domain/model"
)

// ---------------------------------------------------------------------------
// EligibilityEngine – domain service for rule-based credit decisioning
// ---------------------------------------------------------------------------

// Rejection reasons. The set is fixed and enumerable; callers match on these
// values rather than on error types, because a business rejection is a normal
// decision, not a failure.
const (
	ReasonEMIBurden   = "total EMIs exceed 50% of monthly salary"
	ReasonPoorHistory = "poor past loan repayment history (less than 40% EMIs on time)"
	ReasonOverLimit   = "proposed loan amount plus current debt exceeds approved limit"
	ReasonApproved    = "loan eligible for approval"
)

// LoanRequest is the proposed loan under evaluation.
type LoanRequest struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
}

// Decision is the sole output contract of the engine. InterestRate and
// MonthlyInstallment are meaningful only when Approved is true.
type Decision struct {
	Approved           bool
	InterestRate       decimal.Decimal
	MonthlyInstallment decimal.Decimal
	TermMonths         int
	Reason             string
	CreditScore        decimal.Decimal
}

var (
	halfSalaryShare   = decimal.RequireFromString("0.5")
	scoreExcellent    = decimal.NewFromInt(85)
	scoreGood         = decimal.NewFromInt(60)
	scoreModerate     = decimal.NewFromInt(40)
	rateFloorGood     = decimal.RequireFromString("12.00")
	rateFloorModerate = decimal.RequireFromString("16.00")
	perfectScore      = decimal.NewFromInt(100)
)

// EligibilityEngine applies the ordered eligibility rules. It is stateless
// and side-effect free: all inputs are supplied wholesale by the caller, and
// identical inputs always yield identical decisions.
type EligibilityEngine struct{}

// NewEligibilityEngine returns a new engine instance.
func NewEligibilityEngine() *EligibilityEngine {
	return &EligibilityEngine{}
}

// Evaluate runs the rules in strict order against the customer's snapshot and
// full loan history. The first failing rule short-circuits with its reason.
//
//  1. Affordability: active-loan installments plus the requested loan's
//     installment at the requested rate must not exceed 50% of salary.
//  2. Repayment history: the on-time ratio across all past loans maps to a
//     rate tier; the rate is only ever raised to a tier floor, never lowered.
//  3. Debt limit: current debt plus the raw requested principal must not
//     exceed the approved limit.
//
// An error is returned only for invalid request terms (non-positive
// principal/term, negative rate); every business rejection is a normal
// Decision value.
func (e *EligibilityEngine) Evaluate(
	customer model.Customer,
	history []model.LoanRecord,
	req LoanRequest,
	asOf time.Time,
) (Decision, error) {
	// The affordability check always uses the requested rate, never an
	// adjusted one.
	requestedInstallment, err := model.ComputeInstallment(req.Principal, req.AnnualRatePercent, req.TermMonths)
	if err != nil {
		return Decision{}, err
	}

	rejected := func(reason string, score decimal.Decimal) Decision {
		return Decision{
			TermMonths:  req.TermMonths,
			Reason:      reason,
			CreditScore: score,
		}
	}

	// Rule 1: affordability.
	activeInstallments := decimal.Zero
	for _, rec := range history {
		if rec.ActiveAsOf(asOf) {
			activeInstallments = activeInstallments.Add(rec.MonthlyInstallment)
		}
	}
	if activeInstallments.Add(requestedInstallment).GreaterThan(customer.MonthlySalary.Mul(halfSalaryShare)) {
		return rejected(ReasonEMIBurden, RepaymentScore(history)), nil
	}

	// Rule 2: repayment-history credit scoring. No history counts as perfect
	// credit and leaves the requested rate untouched.
	score := RepaymentScore(history)
	finalRate := req.AnnualRatePercent
	if len(history) > 0 {
		switch {
		case score.GreaterThan(scoreExcellent):
			// Keep the requested rate.
		case score.GreaterThan(scoreGood):
			finalRate = decimal.Max(finalRate, rateFloorGood)
		case score.GreaterThan(scoreModerate):
			finalRate = decimal.Max(finalRate, rateFloorModerate)
		default:
			return rejected(ReasonPoorHistory, score), nil
		}
	}

	// Rule 3: debt limit, against the raw requested principal.
	if customer.CurrentDebt.Add(req.Principal).GreaterThan(customer.ApprovedLimit) {
		return rejected(ReasonOverLimit, score), nil
	}

	finalInstallment, err := model.ComputeInstallment(req.Principal, finalRate, req.TermMonths)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Approved:           true,
		InterestRate:       finalRate,
		MonthlyInstallment: finalInstallment,
		TermMonths:         req.TermMonths,
		Reason:             ReasonApproved,
		CreditScore:        score,
	}, nil
}

// RepaymentScore is the repayment-reliability percentage: total periods paid
// on schedule over total term periods across ALL historical loans, as
// aggregate counts rather than a per-loan average. An empty history is
// perfect credit.
func RepaymentScore(history []model.LoanRecord) decimal.Decimal {
	if len(history) == 0 {
		return perfectScore
	}

	var paid, term int64
	for _, rec := range history {
		paid += int64(rec.PeriodsPaidOnTime)
		term += int64(rec.TermMonths)
	}
	if term == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(paid).Mul(perfectScore).Div(decimal.NewFromInt(term))
}
