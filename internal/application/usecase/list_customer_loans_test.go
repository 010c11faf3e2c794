package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/application/usecase"
	"github.com/novabank/credit-engine/internal/domain/model"
)

func historicalLoan(id string, approved bool, paid, term int, approvalDate time.Time) model.LoanRecord {
	return model.LoanRecord{
		ID:                 id,
		CustomerID:         "cust-1",
		Principal:          decimal.NewFromInt(50_000),
		TermMonths:         term,
		AnnualRatePercent:  decimal.NewFromInt(10),
		MonthlyInstallment: decimal.NewFromInt(4_500),
		PeriodsPaidOnTime:  paid,
		Approved:           approved,
		ApprovalDate:       approvalDate,
		EndDate:            approvalDate.AddDate(0, term, 0),
	}
}

func TestListCustomerLoans_Execute(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	loans := &mockLoanRepository{
		findByCustomerIDFunc: func(_ context.Context, customerID string) ([]model.LoanRecord, error) {
			require.Equal(t, "cust-1", customerID)
			return []model.LoanRecord{
				historicalLoan("oldest-open", true, 3, 12, base),
				historicalLoan("paid-off", true, 12, 12, base.AddDate(0, 6, 0)),
				historicalLoan("never-approved", false, 0, 12, time.Time{}),
				historicalLoan("newest-open", true, 0, 12, base.AddDate(1, 0, 0)),
			}, nil
		},
	}

	uc := usecase.NewListCustomerLoansUseCase(loans)

	resp, err := uc.Execute(context.Background(), dto.ListCustomerLoansRequest{CustomerID: "cust-1"})
	require.NoError(t, err)

	// Only approved loans with repayments outstanding, newest first.
	require.Len(t, resp, 2)
	assert.Equal(t, "newest-open", resp[0].ID)
	assert.Equal(t, "oldest-open", resp[1].ID)
	assert.Equal(t, 9, resp[1].RepaymentsLeft)
}

func TestListCustomerLoans_NoLoans(t *testing.T) {
	uc := usecase.NewListCustomerLoansUseCase(&mockLoanRepository{})

	resp, err := uc.Execute(context.Background(), dto.ListCustomerLoansRequest{CustomerID: "cust-9"})
	require.NoError(t, err)
	assert.Empty(t, resp)
}
