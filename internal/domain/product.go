package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxQuantity bounds stock and order quantities to the INTEGER column range.
const MaxQuantity = math.MaxInt32

// Product is a rentable stock unit owned by a vendor.
// 0 <= ReservedQuantity <= TotalQuantity holds for every persisted product.
type Product struct {
	ID               uuid.UUID
	VendorID         string
	Name             string
	TotalQuantity    int
	ReservedQuantity int
	Version          int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) Available() int {
	return p.TotalQuantity - p.ReservedQuantity
}

func (p Product) Validate() error {
	if p.VendorID == "" {
		return fmt.Errorf("vendorID is empty: %w", ErrInvalidArgument)
	}
	if p.Name == "" {
		return fmt.Errorf("name is empty: %w", ErrInvalidArgument)
	}
	if p.TotalQuantity < 0 || p.TotalQuantity > MaxQuantity {
		return fmt.Errorf("total quantity[%d] is out of [0, %d]: %w", p.TotalQuantity, MaxQuantity, ErrInvalidArgument)
	}
	if p.ReservedQuantity < 0 || p.ReservedQuantity > p.TotalQuantity {
		return fmt.Errorf("reserved quantity[%d] is out of [0, %d]: %w", p.ReservedQuantity, p.TotalQuantity, ErrInvalidArgument)
	}

	return nil
}

// Reserve moves quantity from available to reserved.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity[%d] must be positive: %w", quantity, ErrInvalidArgument)
	}
	if p.Available() < quantity {
		return fmt.Errorf("available %d, requested %d: %w", p.Available(), quantity, ErrInsufficientStock)
	}

	p.ReservedQuantity += quantity
	return nil
}

// Release returns reserved quantity to available.
func (p *Product) Release(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity[%d] must be positive: %w", quantity, ErrOverRelease)
	}
	if quantity > p.ReservedQuantity {
		return fmt.Errorf("reserved %d, released %d: %w", p.ReservedQuantity, quantity, ErrOverRelease)
	}

	p.ReservedQuantity -= quantity
	return nil
}
