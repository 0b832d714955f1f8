package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderEventType string

const (
	OrderEventReserved     OrderEventType = "order.reserved"
	OrderEventWithCustomer OrderEventType = "order.with_customer"
	OrderEventReturned     OrderEventType = "order.returned"
	OrderEventClosed       OrderEventType = "order.closed"
	OrderEventCancelled    OrderEventType = "order.cancelled"
)

// OrderEvent is an append-only audit entry written in the same transaction as the transition.
type OrderEvent struct {
	ID        int64
	OrderID   uuid.UUID
	Type      OrderEventType
	Payload   []byte
	CreatedAt time.Time
}
