package event

import (
	"github.com/shopspring/decimal"

	"github.com/novabank/credit-engine/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// LoanApproved is raised when a requested loan passes all eligibility rules
// and is booked.
type LoanApproved struct {
	events.BaseEvent
	CustomerID         string          `json:"customer_id"`
	Principal          decimal.Decimal `json:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TermMonths         int             `json:"term_months"`
	CreditScore        decimal.Decimal `json:"credit_score"`
}

func NewLoanApproved(
	loanID, customerID string,
	principal, interestRate, monthlyInstallment decimal.Decimal,
	termMonths int,
	creditScore decimal.Decimal,
) LoanApproved {
	return LoanApproved{
		BaseEvent:          events.NewBaseEvent("credit.loan.approved", loanID, "Loan"),
		CustomerID:         customerID,
		Principal:          principal,
		InterestRate:       interestRate,
		MonthlyInstallment: monthlyInstallment,
		TermMonths:         termMonths,
		CreditScore:        creditScore,
	}
}

// LoanRejected is raised when a requested loan fails an eligibility rule.
// The aggregate is the customer: no loan record exists for a rejection.
type LoanRejected struct {
	events.BaseEvent
	CustomerID  string          `json:"customer_id"`
	Principal   decimal.Decimal `json:"principal"`
	TermMonths  int             `json:"term_months"`
	Reason      string          `json:"reason"`
	CreditScore decimal.Decimal `json:"credit_score"`
}

func NewLoanRejected(
	customerID string,
	principal decimal.Decimal,
	termMonths int,
	reason string,
	creditScore decimal.Decimal,
) LoanRejected {
	return LoanRejected{
		BaseEvent:   events.NewBaseEvent("credit.loan.rejected", customerID, "Customer"),
		CustomerID:  customerID,
		Principal:   principal,
		TermMonths:  termMonths,
		Reason:      reason,
		CreditScore: creditScore,
	}
}
