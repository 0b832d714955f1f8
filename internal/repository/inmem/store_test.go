package inmem_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/nikolayk812/rentals/internal/repository/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func insertProduct(t *testing.T, store *inmem.Store, total int) domain.Product {
	t.Helper()

	var product domain.Product

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		id, err := tx.Products().InsertProduct(ctx, domain.Product{VendorID: "v1", Name: "kayak", TotalQuantity: total})
		if err != nil {
			return err
		}
		product, err = tx.Products().GetProduct(ctx, id)
		return err
	})
	require.NoError(t, err)

	return product
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := inmem.NewStore()
	product := insertProduct(t, store, 3)

	boom := errors.New("boom")

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		p, err := tx.Products().GetProductForUpdate(ctx, product.ID)
		require.NoError(t, err)
		require.NoError(t, p.Reserve(2))

		_, err = tx.Products().UpdateReserved(ctx, p)
		require.NoError(t, err)

		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		p, err := tx.Products().GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, p.ReservedQuantity)
		assert.Equal(t, int64(1), p.Version)
		return nil
	})
	require.NoError(t, err)
}

func TestInTxExpiredContext(t *testing.T) {
	store := inmem.NewStore()
	product := insertProduct(t, store, 3)

	ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond)
	defer cancel()

	err := store.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		<-ctx.Done()

		p, err := tx.Products().GetProductForUpdate(ctx, product.ID)
		require.NoError(t, err)
		require.NoError(t, p.Reserve(1))

		_, err = tx.Products().UpdateReserved(ctx, p)
		return err
	})
	require.ErrorIs(t, err, domain.ErrTimeout)

	err = store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		p, err := tx.Products().GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, p.ReservedQuantity)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateReserved(t *testing.T) {
	store := inmem.NewStore()
	product := insertProduct(t, store, 2)

	tests := []struct {
		name      string
		reserved  int
		version   int64
		wantError error
	}{
		{name: "stale version", reserved: 1, version: 7, wantError: domain.ErrConcurrentUpdate},
		{name: "above total", reserved: 3, version: 1, wantError: domain.ErrInsufficientStock},
		{name: "negative", reserved: -1, version: 1, wantError: domain.ErrOverRelease},
		{name: "ok", reserved: 2, version: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
				p := product
				p.ReservedQuantity = tt.reserved
				p.Version = tt.version

				updated, err := tx.Products().UpdateReserved(ctx, p)
				if err != nil {
					return err
				}
				assert.Equal(t, int64(2), updated.Version)
				return nil
			})
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConcurrentUnitsAreSerialized(t *testing.T) {
	store := inmem.NewStore()
	product := insertProduct(t, store, 10)

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_ = store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
				p, err := tx.Products().GetProductForUpdate(ctx, product.ID)
				if err != nil {
					return err
				}
				if err := p.Reserve(1); err != nil {
					return err
				}
				_, err = tx.Products().UpdateReserved(ctx, p)
				return err
			})
		}()
	}
	wg.Wait()

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		p, err := tx.Products().GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, p.ReservedQuantity)
		assert.Equal(t, int64(11), p.Version)
		return nil
	})
	require.NoError(t, err)
}

func TestPickupInsertIsIdempotent(t *testing.T) {
	store := inmem.NewStore()
	product := insertProduct(t, store, 1)

	now := time.Now().UTC()

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		order, err := domain.NewOrder(product, "r1", 1, now.Add(time.Hour), now)
		require.NoError(t, err)

		order.ID, err = tx.Orders().InsertOrder(ctx, order)
		require.NoError(t, err)

		first, created, err := tx.Pickups().InsertPickupDocument(ctx, domain.PickupDocument{OrderID: order.ID, Content: []byte("a")})
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := tx.Pickups().InsertPickupDocument(ctx, domain.PickupDocument{OrderID: order.ID, Content: []byte("b")})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first, second)

		_, _, err = tx.Pickups().InsertPickupDocument(ctx, domain.PickupDocument{OrderID: uuid.New(), Content: []byte("c")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestSearchOrders(t *testing.T) {
	store := inmem.NewStore()
	product := insertProduct(t, store, 5)

	now := time.Now().UTC()

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		for i, renter := range []string{"r1", "r2", "r1"} {
			o, err := domain.NewOrder(product, renter, 1, now.Add(time.Duration(i+1)*time.Hour), now.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			_, err = tx.Orders().InsertOrder(ctx, o)
			require.NoError(t, err)
		}

		_, err := tx.Orders().SearchOrders(ctx, domain.OrderFilter{})
		require.Error(t, err)

		byRenter, err := tx.Orders().SearchOrders(ctx, domain.OrderFilter{RenterIDs: []string{"r1"}})
		require.NoError(t, err)
		require.Len(t, byRenter, 2)
		assert.True(t, byRenter[0].CreatedAt.Before(byRenter[1].CreatedAt))

		after := now.Add(90 * time.Minute)
		byDue, err := tx.Orders().SearchOrders(ctx, domain.OrderFilter{DueAt: &domain.TimeRange{After: &after}})
		require.NoError(t, err)
		assert.Len(t, byDue, 2)
		return nil
	})
	require.NoError(t, err)
}
