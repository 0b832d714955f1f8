package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderFilter has AND semantics across fields, OR semantics within each field slice
type OrderFilter struct {
	IDs        []uuid.UUID
	ProductIDs []uuid.UUID
	VendorIDs  []string
	RenterIDs  []string
	Statuses   []OrderStatus
	DueAt      *TimeRange
	CreatedAt  *TimeRange
}

func (f OrderFilter) Validate() error {
	if len(f.IDs) == 0 && len(f.ProductIDs) == 0 && len(f.VendorIDs) == 0 && len(f.RenterIDs) == 0 && len(f.Statuses) == 0 && f.DueAt == nil && f.CreatedAt == nil {
		return errors.New("all fields are empty")
	}

	for _, status := range f.Statuses {
		if _, err := ToOrderStatus(string(status)); err != nil {
			return fmt.Errorf("status[%s]: %w", status, err)
		}
	}

	if f.DueAt != nil {
		if err := f.DueAt.Validate(); err != nil {
			return fmt.Errorf("dueAt: %w", err)
		}
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return errors.New("Before is earlier than After")
		}
	}

	return nil
}

func (t *TimeRange) Contains(ts time.Time) bool {
	if t == nil {
		return true
	}
	if t.Before != nil && !ts.Before(*t.Before) {
		return false
	}
	if t.After != nil && !ts.After(*t.After) {
		return false
	}
	return true
}
