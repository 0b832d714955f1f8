package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is a rental of Quantity units of one product by one renter.
// Status changes only through the transition methods below.
type Order struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	VendorID  string
	RenterID  string
	Quantity  int
	DueAt     time.Time
	Status    OrderStatus

	ReturnCondition *Condition
	LateFee         *Money

	CreatedAt      time.Time
	ReservedAt     *time.Time
	WithCustomerAt *time.Time
	ReturnedAt     *time.Time
	ClosedAt       *time.Time
	CancelledAt    *time.Time
	UpdatedAt      time.Time
}

// NewOrder builds an order in CREATED state. Quantity is fixed from here on.
func NewOrder(product Product, renterID string, quantity int, dueAt, now time.Time) (Order, error) {
	var o Order

	if product.ID == uuid.Nil {
		return o, fmt.Errorf("productID is empty: %w", ErrInvalidArgument)
	}
	if renterID == "" {
		return o, fmt.Errorf("renterID is empty: %w", ErrInvalidArgument)
	}
	if quantity <= 0 || quantity > MaxQuantity {
		return o, fmt.Errorf("quantity[%d] is out of [1, %d]: %w", quantity, MaxQuantity, ErrInvalidArgument)
	}
	if dueAt.IsZero() || !dueAt.After(now) {
		return o, fmt.Errorf("due date %s is not after %s: %w", dueAt.Format(time.RFC3339), now.Format(time.RFC3339), ErrInvalidDateRange)
	}

	return Order{
		ProductID: product.ID,
		VendorID:  product.VendorID,
		RenterID:  renterID,
		Quantity:  quantity,
		DueAt:     dueAt,
		Status:    OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HoldsReservation reports whether the order's quantity is currently reserved in the ledger.
func (o Order) HoldsReservation() bool {
	return o.Status == OrderStatusReserved || o.Status == OrderStatusWithCustomer
}

func (o *Order) MarkReserved(at time.Time) error {
	if err := o.transition(OrderStatusReserved, at); err != nil {
		return err
	}
	o.ReservedAt = &at
	return nil
}

func (o *Order) MarkWithCustomer(at time.Time) error {
	if err := o.transition(OrderStatusWithCustomer, at); err != nil {
		return err
	}
	o.WithCustomerAt = &at
	return nil
}

// MarkReturned records the return. The fee must already be computed.
func (o *Order) MarkReturned(at time.Time, condition Condition, fee Money) error {
	if err := o.transition(OrderStatusReturned, at); err != nil {
		return err
	}
	o.ReturnedAt = &at
	o.ReturnCondition = &condition
	o.LateFee = &fee
	return nil
}

func (o *Order) Close(at time.Time) error {
	if err := o.transition(OrderStatusClosed, at); err != nil {
		return err
	}
	o.ClosedAt = &at
	return nil
}

func (o *Order) Cancel(at time.Time) error {
	if err := o.transition(OrderStatusCancelled, at); err != nil {
		return err
	}
	o.CancelledAt = &at
	return nil
}

func (o *Order) transition(next OrderStatus, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", o.Status, next, ErrInvalidTransition)
	}

	o.Status = next
	o.UpdatedAt = at
	return nil
}
