package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgRepo "github.com/novabank/credit-engine/internal/infrastructure/persistence/postgres"

	"github.com/novabank/credit-engine/internal/domain/event"
	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	"github.com/novabank/credit-engine/pkg/events"
	"github.com/novabank/credit-engine/pkg/testutil"
)

func seedCustomer(t *testing.T, pc *testutil.PostgresContainer, id string, salary, debt, limit string) {
	t.Helper()
	_, err := pc.Pool.Exec(context.Background(),
		`INSERT INTO customers (id, monthly_salary, current_debt, approved_limit) VALUES ($1,$2,$3,$4)`,
		id, testutil.Dec(salary), testutil.Dec(debt), testutil.Dec(limit))
	require.NoError(t, err)
}

func TestPostgresRepositories(t *testing.T) {
	testutil.SkipUnlessIntegration(t)

	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Cleanup(t)
	pc.RunMigrations(t, "../../../../migrations")

	customers := pgRepo.NewCustomerRepo(pc.Pool)
	loans := pgRepo.NewLoanRepo(pc.Pool)

	custID := testutil.TestCustomerID1.String()
	seedCustomer(t, pc, custID, "100000", "0", "3600000")

	t.Run("customer round trip", func(t *testing.T) {
		c, err := customers.FindByID(ctx, custID)
		require.NoError(t, err)
		assert.Equal(t, custID, c.ID)
		testutil.AssertDecimalEqual(t, testutil.Dec("100000"), c.MonthlySalary)
		assert.True(t, c.CurrentDebt.IsZero())
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := customers.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("update debt", func(t *testing.T) {
		require.NoError(t, customers.UpdateDebt(ctx, custID, testutil.Dec("250000")))

		c, err := customers.FindByID(ctx, custID)
		require.NoError(t, err)
		testutil.AssertDecimalEqual(t, testutil.Dec("250000"), c.CurrentDebt)

		require.NoError(t, customers.UpdateDebt(ctx, custID, decimal.Zero))
	})

	t.Run("update debt of unknown customer", func(t *testing.T) {
		err := customers.UpdateDebt(ctx, uuid.NewString(), testutil.Dec("1"))
		assert.ErrorIs(t, err, port.ErrNotFound)
		testutil.AssertErrorContains(t, err, "update customer debt")
	})

	t.Run("loan round trip", func(t *testing.T) {
		now := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
		booked := model.NewApprovedLoan(custID,
			testutil.Dec("100000"), testutil.Dec("12.00"), 24, testutil.Dec("4707.35"), now)
		require.NoError(t, loans.Save(ctx, booked))

		got, err := loans.FindByID(ctx, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, booked.CustomerID, got.CustomerID)
		assert.True(t, got.Principal.Equal(booked.Principal))
		assert.True(t, got.MonthlyInstallment.Equal(booked.MonthlyInstallment))
		assert.True(t, got.Approved)
		assert.Equal(t, booked.ApprovalDate, got.ApprovalDate)
		assert.Equal(t, booked.EndDate, got.EndDate)

		history, err := loans.FindByCustomerID(ctx, custID)
		require.NoError(t, err)
		require.Len(t, history, 1)
	})

	t.Run("unknown loan", func(t *testing.T) {
		_, err := loans.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("outbox lifecycle", func(t *testing.T) {
		outbox := pgRepo.NewOutboxRepo(pc.Pool)

		evt := event.NewLoanApproved(uuid.NewString(), custID,
			testutil.Dec("100000"), testutil.Dec("12.00"), testutil.Dec("4707.35"),
			24, testutil.Dec("100"))
		require.NoError(t, outbox.Store(ctx, []events.OutboxEntry{events.NewOutboxEntry(evt)}))

		pending, err := outbox.FetchUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, evt.EventID(), pending[0].ID)
		assert.Equal(t, "credit.loan.approved", pending[0].EventType)
		assert.Nil(t, pending[0].PublishedAt)
		assert.Contains(t, string(pending[0].Payload), custID)

		require.NoError(t, outbox.MarkPublished(ctx, []string{pending[0].ID}))

		pending, err = outbox.FetchUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func TestUnitOfWorkSerializesPerCustomer(t *testing.T) {
	testutil.SkipUnlessIntegration(t)

	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Cleanup(t)
	pc.RunMigrations(t, "../../../../migrations")

	custID := testutil.TestCustomerID2.String()
	seedCustomer(t, pc, custID, "100000", "0", "3600000")

	uow := pgRepo.NewUnitOfWork(pc.Pool)

	// Two concurrent bookings: the row lock makes the second see the first's
	// debt increment, so the final debt is exactly the sum of both.
	const workers = 2
	principal := testutil.Dec("100000")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = uow.WithinCustomerTx(ctx, custID, func(r port.Repos, customer model.Customer) error {
				booked := model.NewApprovedLoan(custID, principal,
					testutil.Dec("12.00"), 12, testutil.Dec("8884.88"), time.Now())
				if err := r.Loans.Save(ctx, booked); err != nil {
					return err
				}
				return r.Customers.UpdateDebt(ctx, custID, customer.CurrentDebt.Add(principal))
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoErrorf(t, err, "booking %d", i)
	}

	customers := pgRepo.NewCustomerRepo(pc.Pool)
	c, err := customers.FindByID(ctx, custID)
	require.NoError(t, err)
	assert.True(t, c.CurrentDebt.Equal(testutil.Dec("200000")),
		"expected both bookings applied, debt is %s", c.CurrentDebt)

	loans := pgRepo.NewLoanRepo(pc.Pool)
	history, err := loans.FindByCustomerID(ctx, custID)
	require.NoError(t, err)
	assert.Len(t, history, workers)
}

func TestUnitOfWorkRollsBack(t *testing.T) {
	testutil.SkipUnlessIntegration(t)

	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Cleanup(t)
	pc.RunMigrations(t, "../../../../migrations")

	custID := testutil.TestCustomerID1.String()
	seedCustomer(t, pc, custID, "100000", "0", "3600000")

	uow := pgRepo.NewUnitOfWork(pc.Pool)

	err := uow.WithinCustomerTx(ctx, custID, func(r port.Repos, customer model.Customer) error {
		booked := model.NewApprovedLoan(custID, testutil.Dec("100000"),
			testutil.Dec("12.00"), 12, testutil.Dec("8884.88"), time.Now())
		if err := r.Loans.Save(ctx, booked); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	loans := pgRepo.NewLoanRepo(pc.Pool)
	history, err := loans.FindByCustomerID(ctx, custID)
	require.NoError(t, err)
	assert.Empty(t, history, "the failed transaction must leave no loan behind")
}
