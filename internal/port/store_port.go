package port

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/rentals/internal/domain"
)

// Tx exposes repositories bound to a single transaction.
type Tx interface {
	Products() ProductRepository
	Orders() OrderRepository
	Events() OrderEventRepository
	Pickups() PickupRepository
}

// Store runs fn as one unit of work: everything fn does through tx commits
// together when fn returns nil and is rolled back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// InTxWithTimeout bounds one unit of work by timeout. A missed deadline is
// reported as domain.ErrTimeout. A non-positive timeout means no bound.
func InTxWithTimeout(ctx context.Context, store Store, timeout time.Duration, fn func(ctx context.Context, tx Tx) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := store.InTx(ctx, fn)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}

	return err
}
