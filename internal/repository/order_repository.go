package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rentals/internal/db"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		dbtx: tx, // use provided transaction instead
	}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	dbOrder, err := r.q.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrder: %w", ErrOrderNotFound)
		}
		return o, fmt.Errorf("q.GetOrder: %w", mapPgError(err))
	}

	order, err := mapDBOrderToDomain(dbOrder)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := withTx(ctx, r.dbtx, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Order{}, fmt.Errorf("q.GetOrderForUpdate: %w", ErrOrderNotFound)
			}
			return domain.Order{}, fmt.Errorf("q.GetOrderForUpdate: %w", mapPgError(err))
		}

		return mapDBOrderToDomain(dbOrder)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if order.ProductID == uuid.Nil {
		return uuid.Nil, errors.New("productID is empty")
	}
	if order.Quantity <= 0 {
		return uuid.Nil, errors.New("quantity is not positive")
	}

	orderID, err := r.q.InsertOrder(ctx, db.InsertOrderParams{
		ProductID:  order.ProductID,
		VendorID:   order.VendorID,
		RenterID:   order.RenterID,
		Quantity:   int32(order.Quantity),
		DueAt:      order.DueAt,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		ReservedAt: order.ReservedAt,
		UpdatedAt:  order.UpdatedAt,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", mapPgError(err))
	}

	return orderID, nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, order domain.Order) error {
	if order.ID == uuid.Nil {
		return errors.New("orderID is empty")
	}
	if order.Status == "" {
		return errors.New("status is empty")
	}

	arg := db.UpdateOrderParams{
		ID:             order.ID,
		Status:         string(order.Status),
		ReservedAt:     order.ReservedAt,
		WithCustomerAt: order.WithCustomerAt,
		ReturnedAt:     order.ReturnedAt,
		ClosedAt:       order.ClosedAt,
		CancelledAt:    order.CancelledAt,
		UpdatedAt:      order.UpdatedAt,
	}

	if order.ReturnCondition != nil {
		arg.ReturnCondition = lo.ToPtr(string(*order.ReturnCondition))
	}

	if order.LateFee != nil {
		arg.LateFeeAmount = decimal.NewNullDecimal(order.LateFee.Amount)
		arg.LateFeeCurrency = lo.ToPtr(order.LateFee.Currency.String())
	}

	cmdTag, err := r.q.UpdateOrder(ctx, arg)
	if err != nil {
		return fmt.Errorf("q.UpdateOrder: %w", mapPgError(err))
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.UpdateOrder: %w", ErrOrderNotFound)
	}

	return nil
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.SearchOrdersParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
		return string(s)
	})

	var dueAfter, dueBefore, createdAfter, createdBefore *time.Time

	if filter.DueAt != nil {
		dueAfter = filter.DueAt.After
		dueBefore = filter.DueAt.Before
	}

	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	return db.SearchOrdersParams{
		Ids:           nilSliceIfEmpty(lo.Uniq(filter.IDs)),
		ProductIds:    nilSliceIfEmpty(lo.Uniq(filter.ProductIDs)),
		VendorIds:     nilSliceIfEmpty(lo.Uniq(filter.VendorIDs)),
		RenterIds:     nilSliceIfEmpty(lo.Uniq(filter.RenterIDs)),
		Statuses:      nilSliceIfEmpty(lo.Uniq(statuses)),
		DueAfter:      dueAfter,
		DueBefore:     dueBefore,
		CreatedAfter:  createdAfter,
		CreatedBefore: createdBefore,
	}
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	dbOrders, err := r.q.SearchOrders(ctx, mapDomainOrderFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchOrders: %w", mapPgError(err))
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, row := range dbOrders {
		order, err := mapDBOrderToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func mapDBOrderToDomain(row db.RentalOrder) (domain.Order, error) {
	var o domain.Order

	status, err := domain.ToOrderStatus(row.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.Status, err)
	}

	var lateFee *domain.Money

	if row.LateFeeAmount.Valid {
		parsedCurrency, err := currency.ParseISO(lo.FromPtr(row.LateFeeCurrency))
		if err != nil {
			return o, fmt.Errorf("currency[%s] is not valid: %w", lo.FromPtr(row.LateFeeCurrency), err)
		}
		lateFee = &domain.Money{Amount: row.LateFeeAmount.Decimal, Currency: parsedCurrency}
	}

	var condition *domain.Condition
	if row.ReturnCondition != nil {
		condition = lo.ToPtr(domain.Condition(*row.ReturnCondition))
	}

	return domain.Order{
		ID:              row.ID,
		ProductID:       row.ProductID,
		VendorID:        row.VendorID,
		RenterID:        row.RenterID,
		Quantity:        int(row.Quantity),
		DueAt:           row.DueAt,
		Status:          status,
		ReturnCondition: condition,
		LateFee:         lateFee,
		CreatedAt:       row.CreatedAt,
		ReservedAt:      row.ReservedAt,
		WithCustomerAt:  row.WithCustomerAt,
		ReturnedAt:      row.ReturnedAt,
		ClosedAt:        row.ClosedAt,
		CancelledAt:     row.CancelledAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
