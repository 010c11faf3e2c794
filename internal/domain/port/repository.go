package port

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/service"
	"github.com/novabank/credit-engine/pkg/events"
)

// ErrNotFound is returned when a customer or loan does not exist. Resolving
// it to a transport-level condition is the caller's responsibility.
var ErrNotFound = errors.New("not found")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// CustomerRepository reads and updates customer financial snapshots.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (model.Customer, error)
	// UpdateDebt sets the customer's current debt. Only the booking
	// transaction may call it.
	UpdateDebt(ctx context.Context, id string, debt decimal.Decimal) error
}

// LoanRepository persists and retrieves loan records.
type LoanRepository interface {
	Save(ctx context.Context, loan model.LoanRecord) error
	FindByID(ctx context.Context, id string) (model.LoanRecord, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]model.LoanRecord, error)
}

// Repos bundles the repositories bound to one transaction. Outbox writes
// commit or roll back together with the state change they describe.
type Repos struct {
	Customers CustomerRepository
	Loans     LoanRepository
	Outbox    events.OutboxRepository
}

// UnitOfWork serializes booking work per customer. WithinCustomerTx locks the
// customer's row for the duration of fn, so the eligibility re-check and the
// debt increment of a booking can never interleave with another booking for
// the same customer.
type UnitOfWork interface {
	WithinCustomerTx(ctx context.Context, customerID string, fn func(r Repos, customer model.Customer) error) error
}

// ---------------------------------------------------------------------------
// Decision cache port
// ---------------------------------------------------------------------------

// DecisionCache memoizes eligibility decisions for identical request terms.
// The engine is deterministic, so a cached decision is valid until the
// customer's debt or history changes; bookings invalidate the customer's
// entries.
type DecisionCache interface {
	Get(ctx context.Context, key string) (service.Decision, bool, error)
	Set(ctx context.Context, key string, d service.Decision, ttl time.Duration) error
	InvalidateCustomer(ctx context.Context, customerID string) error
}
