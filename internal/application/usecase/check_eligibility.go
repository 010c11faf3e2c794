package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novabank/credit-engine/internal/application/dto"
	"github.com/novabank/credit-engine/internal/domain/port"
	"github.com/novabank/credit-engine/internal/domain/service"
)

// defaultDecisionTTL bounds how long a memoized decision may be served. The
// engine is deterministic, but history and debt change out of band when other
// loans are booked, so entries stay short-lived on top of explicit
// invalidation.
const defaultDecisionTTL = 5 * time.Minute

// CheckEligibilityUseCase runs the eligibility rules against a customer's
// current snapshot and history without persisting anything.
type CheckEligibilityUseCase struct {
	customers port.CustomerRepository
	loans     port.LoanRepository
	cache     port.DecisionCache
	cacheTTL  time.Duration
	engine    *service.EligibilityEngine
	logger    *slog.Logger
	now       func() time.Time
}

// NewCheckEligibilityUseCase wires dependencies. cache may be nil to disable
// memoization; a non-positive cacheTTL falls back to the default.
func NewCheckEligibilityUseCase(
	customers port.CustomerRepository,
	loans port.LoanRepository,
	cache port.DecisionCache,
	cacheTTL time.Duration,
	engine *service.EligibilityEngine,
	logger *slog.Logger,
) *CheckEligibilityUseCase {
	if cacheTTL <= 0 {
		cacheTTL = defaultDecisionTTL
	}
	return &CheckEligibilityUseCase{
		customers: customers,
		loans:     loans,
		cache:     cache,
		cacheTTL:  cacheTTL,
		engine:    engine,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute evaluates the requested terms and returns the decision. Business
// rejections are normal responses; an error means invalid terms or a failed
// dependency.
func (uc *CheckEligibilityUseCase) Execute(
	ctx context.Context,
	req dto.EligibilityRequest,
) (dto.EligibilityResponse, error) {
	key := decisionKey(req.CustomerID, req.Principal.String(), req.TermMonths, req.AnnualRatePercent.String())

	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, key); err != nil {
			uc.logger.DebugContext(ctx, "decision cache read failed", "error", err)
		} else if ok {
			return toEligibilityResponse(req.CustomerID, cached), nil
		}
	}

	customer, err := uc.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("find customer: %w", err)
	}

	history, err := uc.loans.FindByCustomerID(ctx, customer.ID)
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("load loan history: %w", err)
	}

	decision, err := uc.engine.Evaluate(customer, history, service.LoanRequest{
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		TermMonths:        req.TermMonths,
	}, uc.now().UTC())
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("evaluate eligibility: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, decision, uc.cacheTTL); err != nil {
			uc.logger.DebugContext(ctx, "decision cache write failed", "error", err)
		}
	}

	return toEligibilityResponse(req.CustomerID, decision), nil
}

func decisionKey(customerID, principal string, termMonths int, rate string) string {
	return fmt.Sprintf("decision:%s:%s:%d:%s", customerID, principal, termMonths, rate)
}

func toEligibilityResponse(customerID string, d service.Decision) dto.EligibilityResponse {
	resp := dto.EligibilityResponse{
		CustomerID:  customerID,
		Approved:    d.Approved,
		TermMonths:  d.TermMonths,
		Reason:      d.Reason,
		CreditScore: d.CreditScore,
	}
	if d.Approved {
		rate := d.InterestRate
		installment := d.MonthlyInstallment
		resp.InterestRate = &rate
		resp.MonthlyInstallment = &installment
	}
	return resp
}
