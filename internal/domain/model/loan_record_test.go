package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/novabank/credit-engine/internal/domain/model"
)

func TestNewApprovedLoan(t *testing.T) {
	now := time.Date(2026, 3, 15, 17, 42, 3, 0, time.UTC)

	loan := model.NewApprovedLoan(
		"cust-1",
		decimal.NewFromInt(100_000),
		decimal.NewFromInt(12),
		24,
		decimal.RequireFromString("4707.35"),
		now,
	)

	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, "cust-1", loan.CustomerID)
	assert.True(t, loan.Approved)
	assert.Equal(t, 0, loan.PeriodsPaidOnTime)

	// Approval date is the calendar date, not the timestamp.
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), loan.ApprovalDate)
	assert.Equal(t, time.Date(2028, 3, 15, 0, 0, 0, 0, time.UTC), loan.EndDate)
}

func TestLoanRecordActiveAsOf(t *testing.T) {
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	loan := model.LoanRecord{
		Approved: true,
		EndDate:  end,
	}

	t.Run("before end date", func(t *testing.T) {
		assert.True(t, loan.ActiveAsOf(end.AddDate(0, 0, -1)))
	})

	t.Run("on end date", func(t *testing.T) {
		assert.True(t, loan.ActiveAsOf(end))
	})

	t.Run("end date compares by calendar date", func(t *testing.T) {
		// Any time of day on the end date still counts as active.
		assert.True(t, loan.ActiveAsOf(end.Add(23*time.Hour)))
	})

	t.Run("after end date", func(t *testing.T) {
		assert.False(t, loan.ActiveAsOf(end.AddDate(0, 0, 1)))
	})

	t.Run("never approved", func(t *testing.T) {
		rejected := model.LoanRecord{Approved: false, EndDate: end}
		assert.False(t, rejected.ActiveAsOf(end.AddDate(0, 0, -1)))
	})

	t.Run("no end date", func(t *testing.T) {
		open := model.LoanRecord{Approved: true}
		assert.False(t, open.ActiveAsOf(end))
	})
}

func TestLoanRecordRepaymentsLeft(t *testing.T) {
	loan := model.LoanRecord{TermMonths: 24, PeriodsPaidOnTime: 9}
	assert.Equal(t, 15, loan.RepaymentsLeft())

	paidOff := model.LoanRecord{TermMonths: 12, PeriodsPaidOnTime: 12}
	assert.Equal(t, 0, paidOff.RepaymentsLeft())
}
