package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	pkgpostgres "github.com/novabank/credit-engine/pkg/postgres"
)

// LoanRepo implements port.LoanRepository over a pgx Querier.
type LoanRepo struct {
	q pkgpostgres.Querier
}

// NewLoanRepo creates a repository backed by a pool or transaction.
func NewLoanRepo(q pkgpostgres.Querier) *LoanRepo {
	return &LoanRepo{q: q}
}

// Save inserts a loan record. Records are append-only: periods-paid updates
// happen through the servicing pipeline, not through this engine.
func (r *LoanRepo) Save(ctx context.Context, loan model.LoanRecord) error {
	query := `
		INSERT INTO loans (
			id, customer_id, principal, term_months, annual_rate_percent,
			monthly_installment, periods_paid_on_time, approved,
			approval_date, end_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.q.Exec(ctx, query,
		loan.ID, loan.CustomerID, loan.Principal, loan.TermMonths,
		loan.AnnualRatePercent, loan.MonthlyInstallment,
		loan.PeriodsPaidOnTime, loan.Approved,
		nullableDate(loan.ApprovalDate), nullableDate(loan.EndDate),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	return nil
}

// FindByID retrieves a single loan record.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.LoanRecord, error) {
	row := r.q.QueryRow(ctx, selectLoans+` WHERE id = $1`, id)
	loan, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoanRecord{}, port.ErrNotFound
	}
	return loan, err
}

// FindByCustomerID retrieves the customer's full loan history, oldest first.
func (r *LoanRepo) FindByCustomerID(ctx context.Context, customerID string) ([]model.LoanRecord, error) {
	rows, err := r.q.Query(ctx, selectLoans+` WHERE customer_id = $1 ORDER BY approval_date, id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var result []model.LoanRecord
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, loan)
	}
	return result, rows.Err()
}

const selectLoans = `
	SELECT id, customer_id, principal, term_months, annual_rate_percent,
	       monthly_installment, periods_paid_on_time, approved,
	       approval_date, end_date
	FROM loans`

func scanLoan(row pgx.Row) (model.LoanRecord, error) {
	var (
		loan                  model.LoanRecord
		approvalDate, endDate *time.Time
	)
	err := row.Scan(
		&loan.ID, &loan.CustomerID, &loan.Principal, &loan.TermMonths,
		&loan.AnnualRatePercent, &loan.MonthlyInstallment,
		&loan.PeriodsPaidOnTime, &loan.Approved,
		&approvalDate, &endDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoanRecord{}, err
		}
		return model.LoanRecord{}, fmt.Errorf("scan loan: %w", err)
	}
	if approvalDate != nil {
		loan.ApprovalDate = approvalDate.UTC()
	}
	if endDate != nil {
		loan.EndDate = endDate.UTC()
	}
	return loan, nil
}

// nullableDate maps the zero time to SQL NULL.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
