package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	// GetOrderForUpdate locks the order row until the surrounding transaction ends.
	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	// UpdateOrder persists status, transition timestamps, condition and fee.
	UpdateOrder(ctx context.Context, order domain.Order) error
}

type OrderEventRepository interface {
	AppendOrderEvent(ctx context.Context, event domain.OrderEvent) error
	ListOrderEvents(ctx context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error)
}
