// Package returns accepts goods back from renters and quotes late fees.
package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/latefee"
	"go.uber.org/zap"
)

// Lifecycle is the part of the order lifecycle the processor drives.
type Lifecycle interface {
	Get(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error)
	ProcessReturn(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID, condition domain.Condition, returnedAt time.Time) (domain.Order, error)
}

type Processor struct {
	lifecycle  Lifecycle
	conditions domain.ConditionSet
	schedule   domain.FeeSchedule
	now        func() time.Time
	logger     *zap.Logger
}

func NewProcessor(lifecycle Lifecycle, conditions domain.ConditionSet, schedule domain.FeeSchedule, now func() time.Time, logger *zap.Logger) *Processor {
	return &Processor{
		lifecycle:  lifecycle,
		conditions: conditions,
		schedule:   schedule,
		now:        now,
		logger:     logger.Named("returns"),
	}
}

type ReturnRequest struct {
	OrderID   uuid.UUID
	Condition string
	// ReturnedAt defaults to the current time.
	ReturnedAt *time.Time
}

// Process validates the request and closes the order. On any failure the
// order stays with the customer and its stock stays reserved.
func (p *Processor) Process(ctx context.Context, vc domain.VendorCapability, req ReturnRequest) (domain.Order, error) {
	if req.OrderID == uuid.Nil {
		return domain.Order{}, fmt.Errorf("orderID is empty: %w", domain.ErrInvalidArgument)
	}

	condition, err := p.conditions.Parse(req.Condition)
	if err != nil {
		return domain.Order{}, fmt.Errorf("conditions.Parse: %w", err)
	}

	now := p.now()

	returnedAt := now
	if req.ReturnedAt != nil {
		returnedAt = *req.ReturnedAt
	}

	if returnedAt.After(now) {
		return domain.Order{}, fmt.Errorf("returnedAt %s is in the future: %w", returnedAt.Format(time.RFC3339), domain.ErrInvalidDateRange)
	}

	order, err := p.lifecycle.ProcessReturn(ctx, vc, req.OrderID, condition, returnedAt)
	if err != nil {
		p.logger.Warn("return rejected", zap.Stringer("orderID", req.OrderID), zap.Error(err))
		return domain.Order{}, fmt.Errorf("lifecycle.ProcessReturn: %w", err)
	}

	return order, nil
}

// FeeQuote is the late fee of an order. Final quotes are the recorded fee of a
// returned order; others are accrued as of AsOf.
type FeeQuote struct {
	OrderID     uuid.UUID
	Status      domain.OrderStatus
	Fee         domain.Money
	OverdueDays int
	AsOf        time.Time
	Final       bool
}

func (p *Processor) LateFee(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (FeeQuote, error) {
	order, err := p.lifecycle.Get(ctx, vc, orderID)
	if err != nil {
		return FeeQuote{}, fmt.Errorf("lifecycle.Get: %w", err)
	}

	now := p.now()

	quote := FeeQuote{
		OrderID: order.ID,
		Status:  order.Status,
		Fee:     domain.ZeroMoney(p.schedule.Currency),
		AsOf:    now,
	}

	switch order.Status {
	case domain.OrderStatusCancelled:
		return FeeQuote{}, fmt.Errorf("order[%s] is cancelled: %w", order.ID, domain.ErrInvalidTransition)

	case domain.OrderStatusReturned, domain.OrderStatusClosed:
		quote.Final = true
		if order.ReturnedAt != nil {
			quote.AsOf = *order.ReturnedAt
			quote.OverdueDays = latefee.OverdueDays(order.DueAt, *order.ReturnedAt)
		}
		if order.LateFee != nil {
			quote.Fee = *order.LateFee
		}

	case domain.OrderStatusWithCustomer:
		fee, err := latefee.Compute(order.CreatedAt, order.DueAt, now, p.schedule)
		if err != nil {
			return FeeQuote{}, fmt.Errorf("latefee.Compute: %w", err)
		}
		quote.Fee = fee
		quote.OverdueDays = latefee.OverdueDays(order.DueAt, now)
	}

	return quote, nil
}
