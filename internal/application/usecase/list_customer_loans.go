package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/domain/port"
)

// ListCustomerLoansUseCase lists a customer's current loans: approved records
// with repayments still outstanding, most recently approved first.
type ListCustomerLoansUseCase struct {
	loans port.LoanRepository
}

// NewListCustomerLoansUseCase wires dependencies.
func NewListCustomerLoansUseCase(loans port.LoanRepository) *ListCustomerLoansUseCase {
	return &ListCustomerLoansUseCase{loans: loans}
}

// Execute returns the customer's current loans.
func (uc *ListCustomerLoansUseCase) Execute(
	ctx context.Context,
	req dto.ListCustomerLoansRequest,
) ([]dto.LoanResponse, error) {
	records, err := uc.loans.FindByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}

	var current []dto.LoanResponse
	for _, rec := range records {
		if rec.Approved && rec.RepaymentsLeft() > 0 {
			current = append(current, toLoanResponse(rec))
		}
	}
	sort.Slice(current, func(i, j int) bool {
		return current[i].ApprovalDate.After(current[j].ApprovalDate)
	})
	return current, nil
}
