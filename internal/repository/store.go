package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rentals/internal/port"
)

// Store runs units of work in PostgreSQL transactions.
type Store struct {
	pool *pgxpool.Pool
}

var _ port.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	_, err := inTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(ctx, txRepositories{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("inTx: %w", mapPgError(err))
	}

	return nil
}

type txRepositories struct {
	tx pgx.Tx
}

func (r txRepositories) Products() port.ProductRepository  { return NewProductWithTx(r.tx) }
func (r txRepositories) Orders() port.OrderRepository      { return NewOrderWithTx(r.tx) }
func (r txRepositories) Events() port.OrderEventRepository { return NewOrderEventWithTx(r.tx) }
func (r txRepositories) Pickups() port.PickupRepository    { return NewPickupWithTx(r.tx) }
