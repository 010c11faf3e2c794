package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/application/usecase"
	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	"github.com/novabank/credit-engine/pkg/observability"
)

const wireDateLayout = "2006-01-02"

// CreditHandler implements CreditServiceServer on top of the application
// use cases. It owns the wire<->DTO mapping and the gRPC status mapping;
// business rejections are normal responses, never errors.
type CreditHandler struct {
	UnimplementedCreditServiceServer

	checkEligibility *usecase.CheckEligibilityUseCase
	createLoan       *usecase.CreateLoanUseCase
	getLoan          *usecase.GetLoanUseCase
	listLoans        *usecase.ListCustomerLoansUseCase
	metrics          *observability.DecisionMetrics
	logger           *slog.Logger
}

// NewCreditHandler creates a new handler with all use-case dependencies.
func NewCreditHandler(
	checkEligibility *usecase.CheckEligibilityUseCase,
	createLoan *usecase.CreateLoanUseCase,
	getLoan *usecase.GetLoanUseCase,
	listLoans *usecase.ListCustomerLoansUseCase,
	metrics *observability.DecisionMetrics,
	logger *slog.Logger,
) *CreditHandler {
	return &CreditHandler{
		checkEligibility: checkEligibility,
		createLoan:       createLoan,
		getLoan:          getLoan,
		listLoans:        listLoans,
		metrics:          metrics,
		logger:           logger,
	}
}

// CheckEligibility evaluates the requested terms without persisting anything.
func (h *CreditHandler) CheckEligibility(ctx context.Context, req *CheckEligibilityRequest) (*CheckEligibilityResponse, error) {
	amount, rate, err := parseTerms(req.LoanAmount, req.InterestRate)
	if err != nil {
		return nil, err
	}

	resp, err := h.checkEligibility.Execute(ctx, dto.EligibilityRequest{
		CustomerID:        req.CustomerID,
		Principal:         amount,
		TermMonths:        req.Tenure,
		AnnualRatePercent: rate,
	})
	if err != nil {
		return nil, h.mapError(ctx, "CheckEligibility", err)
	}

	h.metrics.Observe(resp.Approved, resp.Reason)

	return &CheckEligibilityResponse{
		CustomerID:         resp.CustomerID,
		LoanApproved:       resp.Approved,
		InterestRate:       decimalString(resp.InterestRate),
		MonthlyInstallment: decimalString(resp.MonthlyInstallment),
		Tenure:             resp.TermMonths,
		Message:            resp.Reason,
		CreditScore:        resp.CreditScore.String(),
	}, nil
}

// CreateLoan evaluates and, on approval, books the loan.
func (h *CreditHandler) CreateLoan(ctx context.Context, req *CreateLoanRequest) (*CreateLoanResponse, error) {
	amount, rate, err := parseTerms(req.LoanAmount, req.InterestRate)
	if err != nil {
		return nil, err
	}

	resp, err := h.createLoan.Execute(ctx, dto.CreateLoanRequest{
		CustomerID:        req.CustomerID,
		Principal:         amount,
		TermMonths:        req.Tenure,
		AnnualRatePercent: rate,
	})
	if err != nil {
		return nil, h.mapError(ctx, "CreateLoan", err)
	}

	h.metrics.Observe(resp.Approved, resp.Reason)

	return &CreateLoanResponse{
		LoanID:             resp.LoanID,
		CustomerID:         resp.CustomerID,
		LoanApproved:       resp.Approved,
		InterestRate:       decimalString(resp.InterestRate),
		MonthlyInstallment: decimalString(resp.MonthlyInstallment),
		Tenure:             resp.TermMonths,
		Message:            resp.Reason,
	}, nil
}

// GetLoan retrieves a loan by ID.
func (h *CreditHandler) GetLoan(ctx context.Context, req *GetLoanRequest) (*GetLoanResponse, error) {
	resp, err := h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: req.LoanID})
	if err != nil {
		return nil, h.mapError(ctx, "GetLoan", err)
	}
	return &GetLoanResponse{Loan: toWireLoan(resp)}, nil
}

// ListCustomerLoans lists the customer's current loans.
func (h *CreditHandler) ListCustomerLoans(ctx context.Context, req *ListCustomerLoansRequest) (*ListCustomerLoansResponse, error) {
	loans, err := h.listLoans.Execute(ctx, dto.ListCustomerLoansRequest{CustomerID: req.CustomerID})
	if err != nil {
		return nil, h.mapError(ctx, "ListCustomerLoans", err)
	}

	out := make([]*Loan, 0, len(loans))
	for _, l := range loans {
		out = append(out, toWireLoan(l))
	}
	return &ListCustomerLoansResponse{Loans: out}, nil
}

func (h *CreditHandler) mapError(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, port.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrInvalidPrincipal),
		errors.Is(err, model.ErrInvalidRate),
		errors.Is(err, model.ErrInvalidTerm):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func parseTerms(amount, rate string) (decimal.Decimal, decimal.Decimal, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid loan_amount %q", amount)
	}
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid interest_rate %q", rate)
	}
	return amt, r, nil
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func toWireLoan(l dto.LoanResponse) *Loan {
	return &Loan{
		LoanID:             l.ID,
		CustomerID:         l.CustomerID,
		LoanAmount:         l.Principal.String(),
		Tenure:             l.TermMonths,
		InterestRate:       l.AnnualRatePercent.String(),
		MonthlyInstallment: l.MonthlyInstallment.String(),
		EMIsPaidOnTime:     l.PeriodsPaidOnTime,
		RepaymentsLeft:     l.RepaymentsLeft,
		LoanApproved:       l.Approved,
		DateOfApproval:     wireDate(l.ApprovalDate),
		EndDate:            wireDate(l.EndDate),
	}
}

func wireDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(wireDateLayout)
}
