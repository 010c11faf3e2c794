package grpc

// Wire messages for the CreditService. Amounts and rates travel as decimal
// strings; the registered JSON codec handles (de)serialization until buf
// generation replaces these hand-written types.

// CheckEligibilityRequest carries the requested loan terms.
type CheckEligibilityRequest struct {
	CustomerID   string `json:"customer_id"`
	LoanAmount   string `json:"loan_amount"`
	InterestRate string `json:"interest_rate"`
	Tenure       int    `json:"tenure"`
}

// CheckEligibilityResponse is the wire shape of a credit decision.
// InterestRate and MonthlyInstallment are null when rejected.
type CheckEligibilityResponse struct {
	CustomerID         string  `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	InterestRate       *string `json:"interest_rate"`
	MonthlyInstallment *string `json:"monthly_installment"`
	Tenure             int     `json:"tenure"`
	Message            string  `json:"message"`
	CreditScore        string  `json:"credit_score"`
}

// CreateLoanRequest carries the terms of a booking attempt.
type CreateLoanRequest struct {
	CustomerID   string `json:"customer_id"`
	LoanAmount   string `json:"loan_amount"`
	InterestRate string `json:"interest_rate"`
	Tenure       int    `json:"tenure"`
}

// CreateLoanResponse reports the booking outcome. LoanID is null on rejection.
type CreateLoanResponse struct {
	LoanID             *string `json:"loan_id"`
	CustomerID         string  `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	InterestRate       *string `json:"interest_rate"`
	MonthlyInstallment *string `json:"monthly_installment"`
	Tenure             int     `json:"tenure"`
	Message            string  `json:"message"`
}

// GetLoanRequest identifies a loan.
type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// Loan is the wire representation of a persisted loan record.
type Loan struct {
	LoanID             string `json:"loan_id"`
	CustomerID         string `json:"customer_id"`
	LoanAmount         string `json:"loan_amount"`
	Tenure             int    `json:"tenure"`
	InterestRate       string `json:"interest_rate"`
	MonthlyInstallment string `json:"monthly_installment"`
	EMIsPaidOnTime     int    `json:"emis_paid_on_time"`
	RepaymentsLeft     int    `json:"repayments_left"`
	LoanApproved       bool   `json:"loan_approved"`
	DateOfApproval     string `json:"date_of_approval"`
	EndDate            string `json:"end_date"`
}

// GetLoanResponse wraps a single loan.
type GetLoanResponse struct {
	Loan *Loan `json:"loan"`
}

// ListCustomerLoansRequest identifies the customer.
type ListCustomerLoansRequest struct {
	CustomerID string `json:"customer_id"`
}

// ListCustomerLoansResponse lists the customer's current loans.
type ListCustomerLoansResponse struct {
	Loans []*Loan `json:"loans"`
}
