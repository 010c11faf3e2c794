package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	pkgpostgres "github.com/novabank/credit-engine/pkg/postgres"
)

// CustomerRepo implements port.CustomerRepository over a pgx Querier, so the
// same code serves both pool-backed reads and transaction-scoped access.
type CustomerRepo struct {
	q pkgpostgres.Querier
}

// NewCustomerRepo creates a repository backed by a pool or transaction.
func NewCustomerRepo(q pkgpostgres.Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// FindByID retrieves a customer's financial snapshot.
func (r *CustomerRepo) FindByID(ctx context.Context, id string) (model.Customer, error) {
	query := `
		SELECT id, monthly_salary, current_debt, approved_limit
		FROM customers
		WHERE id = $1
	`
	return r.scanCustomer(r.q.QueryRow(ctx, query, id))
}

// findByIDForUpdate locks the customer row until the surrounding transaction
// ends. Only meaningful when r is transaction-scoped.
func (r *CustomerRepo) findByIDForUpdate(ctx context.Context, id string) (model.Customer, error) {
	query := `
		SELECT id, monthly_salary, current_debt, approved_limit
		FROM customers
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanCustomer(r.q.QueryRow(ctx, query, id))
}

// UpdateDebt sets the customer's current debt.
func (r *CustomerRepo) UpdateDebt(ctx context.Context, id string, debt decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE customers SET current_debt = $2 WHERE id = $1`, id, debt)
	if err != nil {
		return fmt.Errorf("update customer debt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update customer debt: %w", port.ErrNotFound)
	}
	return nil
}

func (r *CustomerRepo) scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.MonthlySalary, &c.CurrentDebt, &c.ApprovedLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Customer{}, port.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}
