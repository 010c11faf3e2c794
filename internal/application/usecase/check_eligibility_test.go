package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/application/usecase"
	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	"github.com/novabank/credit-engine/internal/domain/service"
	"github.com/novabank/credit-engine/pkg/events"
)

// ---------------------------------------------------------------------------
// Hand-rolled mocks shared by the use case tests in this package.
// ---------------------------------------------------------------------------

type mockCustomerRepository struct {
	findByIDFunc  func(ctx context.Context, id string) (model.Customer, error)
	findByIDCalls int
	updatedDebt   *decimal.Decimal
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id string) (model.Customer, error) {
	m.findByIDCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Customer{}, port.ErrNotFound
}

func (m *mockCustomerRepository) UpdateDebt(_ context.Context, _ string, debt decimal.Decimal) error {
	m.updatedDebt = &debt
	return nil
}

type mockLoanRepository struct {
	findByIDFunc         func(ctx context.Context, id string) (model.LoanRecord, error)
	findByCustomerIDFunc func(ctx context.Context, customerID string) ([]model.LoanRecord, error)
	saved                []model.LoanRecord
	saveErr              error
}

func (m *mockLoanRepository) Save(_ context.Context, loan model.LoanRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.LoanRecord, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanRecord{}, port.ErrNotFound
}

func (m *mockLoanRepository) FindByCustomerID(ctx context.Context, customerID string) ([]model.LoanRecord, error) {
	if m.findByCustomerIDFunc != nil {
		return m.findByCustomerIDFunc(ctx, customerID)
	}
	return nil, nil
}

type mockDecisionCache struct {
	entries     map[string]service.Decision
	getErr      error
	setErr      error
	invalidated []string
}

func newMockDecisionCache() *mockDecisionCache {
	return &mockDecisionCache{entries: map[string]service.Decision{}}
}

func (m *mockDecisionCache) Get(_ context.Context, key string) (service.Decision, bool, error) {
	if m.getErr != nil {
		return service.Decision{}, false, m.getErr
	}
	d, ok := m.entries[key]
	return d, ok, nil
}

func (m *mockDecisionCache) Set(_ context.Context, key string, d service.Decision, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = d
	return nil
}

func (m *mockDecisionCache) InvalidateCustomer(_ context.Context, customerID string) error {
	m.invalidated = append(m.invalidated, customerID)
	return nil
}

type mockOutbox struct {
	stored []events.OutboxEntry
	err    error
}

func (m *mockOutbox) Store(_ context.Context, entries []events.OutboxEntry) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, entries...)
	return nil
}

func (m *mockOutbox) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	var out []events.OutboxEntry
	for _, e := range m.stored {
		if e.PublishedAt == nil && len(out) < batchSize {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutbox) MarkPublished(_ context.Context, ids []string) error {
	now := time.Now()
	for _, id := range ids {
		for i := range m.stored {
			if m.stored[i].ID == id {
				m.stored[i].PublishedAt = &now
			}
		}
	}
	return nil
}

type mockUnitOfWork struct {
	customer  model.Customer
	customers *mockCustomerRepository
	loans     *mockLoanRepository
	outbox    *mockOutbox
	err       error
}

func (m *mockUnitOfWork) WithinCustomerTx(_ context.Context, _ string, fn func(r port.Repos, customer model.Customer) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(port.Repos{Customers: m.customers, Loans: m.loans, Outbox: m.outbox}, m.customer)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func solventCustomer() model.Customer {
	return model.Customer{
		ID:            "cust-1",
		MonthlySalary: decimal.NewFromInt(100_000),
		CurrentDebt:   decimal.NewFromInt(200_000),
		ApprovedLimit: decimal.NewFromInt(3_600_000),
	}
}

func customerRepoReturning(c model.Customer) *mockCustomerRepository {
	return &mockCustomerRepository{
		findByIDFunc: func(_ context.Context, id string) (model.Customer, error) {
			if id != c.ID {
				return model.Customer{}, port.ErrNotFound
			}
			return c, nil
		},
	}
}

func eligibilityRequest() dto.EligibilityRequest {
	return dto.EligibilityRequest{
		CustomerID:        "cust-1",
		Principal:         decimal.NewFromInt(100_000),
		TermMonths:        12,
		AnnualRatePercent: decimal.NewFromInt(10),
	}
}

// ---------------------------------------------------------------------------
// CheckEligibility
// ---------------------------------------------------------------------------

func TestCheckEligibility_Execute(t *testing.T) {
	t.Run("approves an affordable first loan", func(t *testing.T) {
		uc := usecase.NewCheckEligibilityUseCase(
			customerRepoReturning(solventCustomer()), &mockLoanRepository{},
			nil, 0, service.NewEligibilityEngine(), testLogger())

		resp, err := uc.Execute(context.Background(), eligibilityRequest())

		require.NoError(t, err)
		assert.True(t, resp.Approved)
		assert.Equal(t, "cust-1", resp.CustomerID)
		assert.Equal(t, service.ReasonApproved, resp.Reason)
		require.NotNil(t, resp.InterestRate)
		require.NotNil(t, resp.MonthlyInstallment)
		assert.True(t, resp.InterestRate.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.CreditScore.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejection carries a null rate and installment", func(t *testing.T) {
		poor := solventCustomer()
		poor.MonthlySalary = decimal.NewFromInt(10_000)

		uc := usecase.NewCheckEligibilityUseCase(
			customerRepoReturning(poor), &mockLoanRepository{},
			nil, 0, service.NewEligibilityEngine(), testLogger())

		resp, err := uc.Execute(context.Background(), eligibilityRequest())

		require.NoError(t, err)
		assert.False(t, resp.Approved)
		assert.Equal(t, service.ReasonEMIBurden, resp.Reason)
		assert.Nil(t, resp.InterestRate)
		assert.Nil(t, resp.MonthlyInstallment)
	})

	t.Run("unknown customer is an error, not a rejection", func(t *testing.T) {
		uc := usecase.NewCheckEligibilityUseCase(
			&mockCustomerRepository{}, &mockLoanRepository{},
			nil, 0, service.NewEligibilityEngine(), testLogger())

		_, err := uc.Execute(context.Background(), eligibilityRequest())
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("memoizes the decision", func(t *testing.T) {
		cache := newMockDecisionCache()
		uc := usecase.NewCheckEligibilityUseCase(
			customerRepoReturning(solventCustomer()), &mockLoanRepository{},
			cache, time.Minute, service.NewEligibilityEngine(), testLogger())

		_, err := uc.Execute(context.Background(), eligibilityRequest())
		require.NoError(t, err)
		assert.Len(t, cache.entries, 1)
	})

	t.Run("serves a cached decision without touching the repositories", func(t *testing.T) {
		cache := newMockDecisionCache()
		customers := customerRepoReturning(solventCustomer())
		uc := usecase.NewCheckEligibilityUseCase(
			customers, &mockLoanRepository{},
			cache, time.Minute, service.NewEligibilityEngine(), testLogger())

		first, err := uc.Execute(context.Background(), eligibilityRequest())
		require.NoError(t, err)
		require.Equal(t, 1, customers.findByIDCalls)

		second, err := uc.Execute(context.Background(), eligibilityRequest())
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, customers.findByIDCalls, "cache hit must not reload the customer")
	})

	t.Run("cache failures degrade to evaluation", func(t *testing.T) {
		cache := newMockDecisionCache()
		cache.getErr = errors.New("redis: connection refused")
		cache.setErr = cache.getErr

		uc := usecase.NewCheckEligibilityUseCase(
			customerRepoReturning(solventCustomer()), &mockLoanRepository{},
			cache, time.Minute, service.NewEligibilityEngine(), testLogger())

		resp, err := uc.Execute(context.Background(), eligibilityRequest())
		require.NoError(t, err)
		assert.True(t, resp.Approved)
	})

	t.Run("different terms get different cache entries", func(t *testing.T) {
		cache := newMockDecisionCache()
		uc := usecase.NewCheckEligibilityUseCase(
			customerRepoReturning(solventCustomer()), &mockLoanRepository{},
			cache, time.Minute, service.NewEligibilityEngine(), testLogger())

		_, err := uc.Execute(context.Background(), eligibilityRequest())
		require.NoError(t, err)

		other := eligibilityRequest()
		other.TermMonths = 24
		_, err = uc.Execute(context.Background(), other)
		require.NoError(t, err)

		assert.Len(t, cache.entries, 2)
	})
}
