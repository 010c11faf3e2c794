package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/domain/event"
	"github.com/novabank/credit-engine/internal/domain/model"
	"github.com/novabank/credit-engine/internal/domain/port"
	"github.com/novabank/credit-engine/internal/domain/service"
	"github.com/novabank/credit-engine/pkg/events"
)

// CreateLoanUseCase books a requested loan: it re-runs the full eligibility
// evaluation under a per-customer lock and, on approval, persists the new
// record and increments the customer's debt in the same transaction. Two
// concurrent bookings for one customer therefore always see each other's
// debt. The decision event is written to the outbox in that transaction as
// well; the relay delivers it to Kafka after commit.
type CreateLoanUseCase struct {
	uow    port.UnitOfWork
	cache  port.DecisionCache
	engine *service.EligibilityEngine
	logger *slog.Logger
	now    func() time.Time
}

// NewCreateLoanUseCase wires dependencies. cache may be nil.
func NewCreateLoanUseCase(
	uow port.UnitOfWork,
	cache port.DecisionCache,
	engine *service.EligibilityEngine,
	logger *slog.Logger,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		uow:    uow,
		cache:  cache,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Execute evaluates and, if approved, books the loan. A rejection is a
// normal response carrying the failing rule's reason; nothing but its event
// is persisted.
func (uc *CreateLoanUseCase) Execute(
	ctx context.Context,
	req dto.CreateLoanRequest,
) (dto.CreateLoanResponse, error) {
	now := uc.now().UTC()

	var (
		resp     dto.CreateLoanResponse
		approved bool
	)

	err := uc.uow.WithinCustomerTx(ctx, req.CustomerID, func(r port.Repos, customer model.Customer) error {
		history, err := r.Loans.FindByCustomerID(ctx, customer.ID)
		if err != nil {
			return fmt.Errorf("load loan history: %w", err)
		}

		decision, err := uc.engine.Evaluate(customer, history, service.LoanRequest{
			Principal:         req.Principal,
			AnnualRatePercent: req.AnnualRatePercent,
			TermMonths:        req.TermMonths,
		}, now)
		if err != nil {
			return fmt.Errorf("evaluate eligibility: %w", err)
		}
		approved = decision.Approved

		var evt event.DomainEvent
		if decision.Approved {
			booked := model.NewApprovedLoan(
				customer.ID, req.Principal,
				decision.InterestRate, decision.TermMonths, decision.MonthlyInstallment,
				now,
			)
			if err := r.Loans.Save(ctx, booked); err != nil {
				return fmt.Errorf("save loan: %w", err)
			}

			if err := r.Customers.UpdateDebt(ctx, customer.ID, customer.CurrentDebt.Add(req.Principal)); err != nil {
				return fmt.Errorf("update customer debt: %w", err)
			}

			loanID := booked.ID
			rate := decision.InterestRate
			installment := decision.MonthlyInstallment
			resp = dto.CreateLoanResponse{
				LoanID:             &loanID,
				CustomerID:         req.CustomerID,
				Approved:           true,
				InterestRate:       &rate,
				MonthlyInstallment: &installment,
				TermMonths:         decision.TermMonths,
				Reason:             decision.Reason,
			}
			evt = event.NewLoanApproved(
				booked.ID, req.CustomerID,
				booked.Principal, booked.AnnualRatePercent, booked.MonthlyInstallment,
				booked.TermMonths, decision.CreditScore,
			)
		} else {
			resp = dto.CreateLoanResponse{
				CustomerID: req.CustomerID,
				TermMonths: decision.TermMonths,
				Reason:     decision.Reason,
			}
			evt = event.NewLoanRejected(
				req.CustomerID, req.Principal, req.TermMonths,
				decision.Reason, decision.CreditScore,
			)
		}

		if err := r.Outbox.Store(ctx, []events.OutboxEntry{events.NewOutboxEntry(evt)}); err != nil {
			return fmt.Errorf("store outbox entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.CreateLoanResponse{}, err
	}

	// Booking changed the customer's debt and history; memoized decisions for
	// this customer are stale. A rejection mutated nothing, so caches stand.
	if approved && uc.cache != nil {
		if err := uc.cache.InvalidateCustomer(ctx, req.CustomerID); err != nil {
			uc.logger.DebugContext(ctx, "decision cache invalidation failed", "error", err)
		}
	}

	return resp, nil
}
