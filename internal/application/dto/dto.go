package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// EligibilityRequest carries the raw requested loan terms for a customer.
// Basic range validation (positive principal and term, non-negative rate) is
// assumed to have happened at the transport boundary; the engine fails fast
// if it has not.
type EligibilityRequest struct {
	CustomerID        string          `json:"customer_id"`
	Principal         decimal.Decimal `json:"loan_amount"`
	TermMonths        int             `json:"tenure"`
	AnnualRatePercent decimal.Decimal `json:"interest_rate"`
}

// CreateLoanRequest carries the same terms as EligibilityRequest; booking
// re-runs the full evaluation under a per-customer lock.
type CreateLoanRequest struct {
	CustomerID        string          `json:"customer_id"`
	Principal         decimal.Decimal `json:"loan_amount"`
	TermMonths        int             `json:"tenure"`
	AnnualRatePercent decimal.Decimal `json:"interest_rate"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// ListCustomerLoansRequest identifies the customer whose current loans are listed.
type ListCustomerLoansRequest struct {
	CustomerID string `json:"customer_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// EligibilityResponse is the external shape of a credit decision. InterestRate
// and MonthlyInstallment are null when the loan is rejected.
type EligibilityResponse struct {
	CustomerID         string           `json:"customer_id"`
	Approved           bool             `json:"loan_approved"`
	InterestRate       *decimal.Decimal `json:"interest_rate"`
	MonthlyInstallment *decimal.Decimal `json:"monthly_installment"`
	TermMonths         int              `json:"tenure"`
	Reason             string           `json:"message"`
	CreditScore        decimal.Decimal  `json:"credit_score"`
}

// CreateLoanResponse reports the outcome of a booking attempt. LoanID is set
// only on approval.
type CreateLoanResponse struct {
	LoanID             *string          `json:"loan_id"`
	CustomerID         string           `json:"customer_id"`
	Approved           bool             `json:"loan_approved"`
	InterestRate       *decimal.Decimal `json:"interest_rate"`
	MonthlyInstallment *decimal.Decimal `json:"monthly_installment"`
	TermMonths         int              `json:"tenure"`
	Reason             string           `json:"message"`
}

// LoanResponse is the external representation of a persisted loan record.
type LoanResponse struct {
	ID                 string          `json:"loan_id"`
	CustomerID         string          `json:"customer_id"`
	Principal          decimal.Decimal `json:"loan_amount"`
	TermMonths         int             `json:"tenure"`
	AnnualRatePercent  decimal.Decimal `json:"interest_rate"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	PeriodsPaidOnTime  int             `json:"emis_paid_on_time"`
	RepaymentsLeft     int             `json:"repayments_left"`
	Approved           bool            `json:"loan_approved"`
	ApprovalDate       time.Time       `json:"date_of_approval"`
	EndDate            time.Time       `json:"end_date"`
}
