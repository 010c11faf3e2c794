package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	pkgpostgres "github.com/novabank/credit-engine/pkg/postgres"
)

// UnitOfWork implements port.UnitOfWork on a pgx pool. Per-customer
// serialization comes from locking the customer row (SELECT ... FOR UPDATE)
// for the duration of the transaction: a second booking for the same customer
// blocks until the first commits, so it always re-evaluates against the
// updated debt.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a unit of work on the given pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// WithinCustomerTx locks the customer, then runs fn with transaction-scoped
// repositories. fn returning an error rolls everything back.
func (u *UnitOfWork) WithinCustomerTx(
	ctx context.Context,
	customerID string,
	fn func(r port.Repos, customer model.Customer) error,
) error {
	return pkgpostgres.WithTransaction(ctx, u.pool, func(tx pgx.Tx) error {
		customers := NewCustomerRepo(tx)

		customer, err := customers.findByIDForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("lock customer: %w", err)
		}

		return fn(port.Repos{
			Customers: customers,
			Loans:     NewLoanRepo(tx),
			Outbox:    NewOutboxRepo(tx),
		}, customer)
	})
}
