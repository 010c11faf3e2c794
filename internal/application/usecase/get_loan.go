package usecase

import (
	"context"
	"fmt"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
)

// GetLoanUseCase retrieves a loan record by ID.
type GetLoanUseCase struct {
	loans port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loans port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loans: loans}
}

// Execute returns a loan response for the given ID.
func (uc *GetLoanUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanRequest,
) (dto.LoanResponse, error) {
	loan, err := uc.loans.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

func toLoanResponse(loan model.LoanRecord) dto.LoanResponse {
	return dto.LoanResponse{
		ID:                 loan.ID,
		CustomerID:         loan.CustomerID,
		Principal:          loan.Principal,
		TermMonths:         loan.TermMonths,
		AnnualRatePercent:  loan.AnnualRatePercent,
		MonthlyInstallment: loan.MonthlyInstallment,
		PeriodsPaidOnTime:  loan.PeriodsPaidOnTime,
		RepaymentsLeft:     loan.RepaymentsLeft(),
		Approved:           loan.Approved,
		ApprovalDate:       loan.ApprovalDate,
		EndDate:            loan.EndDate,
	}
}
