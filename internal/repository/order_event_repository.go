package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rentals/internal/db"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/samber/lo"
)

type orderEventRepository struct {
	q *db.Queries
}

func NewOrderEvent(pool *pgxpool.Pool) port.OrderEventRepository {
	return &orderEventRepository{q: db.New(pool)}
}

func NewOrderEventWithTx(tx pgx.Tx) port.OrderEventRepository {
	return &orderEventRepository{q: db.New(tx)}
}

func (r *orderEventRepository) AppendOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	if event.OrderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is empty")
	}

	if err := r.q.InsertOrderEvent(ctx, db.InsertOrderEventParams{
		OrderID:   event.OrderID,
		EventType: string(event.Type),
		Payload:   emptyJSONIfNil(event.Payload),
		CreatedAt: event.CreatedAt,
	}); err != nil {
		return fmt.Errorf("q.InsertOrderEvent: %w", mapPgError(err))
	}

	return nil
}

func (r *orderEventRepository) ListOrderEvents(ctx context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error) {
	rows, err := r.q.ListOrderEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrderEvents: %w", mapPgError(err))
	}

	return lo.Map(rows, func(row db.OrderEvent, _ int) domain.OrderEvent {
		return domain.OrderEvent{
			ID:        row.ID,
			OrderID:   row.OrderID,
			Type:      domain.OrderEventType(row.EventType),
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		}
	}), nil
}

func emptyJSONIfNil(j []byte) []byte {
	if j == nil {
		return []byte(`{}`)
	}
	return j
}
