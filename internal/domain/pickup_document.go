package domain

import (
	"time"

	"github.com/google/uuid"
)

// PickupDocument is the immutable hand-off record of an order. One per order.
type PickupDocument struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	VendorID  string
	RenterID  string
	Quantity  int

	ContentType string
	Content     []byte
	Checksum    string

	GeneratedAt time.Time
}
