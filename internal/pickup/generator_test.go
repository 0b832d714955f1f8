package pickup_test

import (
	"context"
	"testing"
	"time"

	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/pickup"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/nikolayk812/rentals/internal/repository/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

func newGenerator(t *testing.T) *pickup.Generator {
	t.Helper()

	renderer, err := pickup.NewRenderer()
	require.NoError(t, err)

	return pickup.NewGenerator(renderer, func() time.Time { return now })
}

// seedOrder stores a reserved order and returns it.
func seedOrder(t *testing.T, store port.Store) domain.Order {
	t.Helper()

	var order domain.Order

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		id, err := tx.Products().InsertProduct(ctx, domain.Product{VendorID: "v1", Name: "drill", TotalQuantity: 4})
		require.NoError(t, err)

		product, err := tx.Products().GetProduct(ctx, id)
		require.NoError(t, err)

		order, err = domain.NewOrder(product, "r1", 2, now.Add(72*time.Hour), now.Add(-time.Hour))
		require.NoError(t, err)
		require.NoError(t, order.MarkReserved(now.Add(-time.Hour)))

		order.ID, err = tx.Orders().InsertOrder(ctx, order)
		return err
	})
	require.NoError(t, err)

	return order
}

func TestGenerate(t *testing.T) {
	store := inmem.NewStore()
	generator := newGenerator(t)

	order := seedOrder(t, store)

	err := store.InTx(t.Context(), func(ctx context.Context, tx port.Tx) error {
		_, _, err := generator.Generate(ctx, tx.Pickups(), order)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		require.NoError(t, order.MarkWithCustomer(now))

		doc, created, err := generator.Generate(ctx, tx.Pickups(), order)
		require.NoError(t, err)
		assert.True(t, created)

		assert.Equal(t, order.ID, doc.OrderID)
		assert.Equal(t, order.ProductID, doc.ProductID)
		assert.Equal(t, "v1", doc.VendorID)
		assert.Equal(t, "r1", doc.RenterID)
		assert.Equal(t, 2, doc.Quantity)
		assert.Equal(t, now, doc.GeneratedAt)
		assert.Equal(t, pickup.ContentType, doc.ContentType)
		assert.Equal(t, pickup.Checksum(doc.Content), doc.Checksum)

		content := string(doc.Content)
		assert.Contains(t, content, order.ID.String())
		assert.Contains(t, content, "Renter:     r1")
		assert.Contains(t, content, "Quantity:   2")
		assert.Contains(t, content, "Due back:   2024-06-06T12:00:00Z")

		// later state changes do not touch the stored document
		require.NoError(t, order.MarkReturned(now.Add(time.Hour), domain.ConditionGood, domain.Money{}))

		again, created, err := generator.Generate(ctx, tx.Pickups(), order)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, doc, again)
		return nil
	})
	require.NoError(t, err)
}

func TestRenderIsDeterministic(t *testing.T) {
	renderer, err := pickup.NewRenderer()
	require.NoError(t, err)

	order := domain.Order{Quantity: 1, RenterID: "r", VendorID: "v", DueAt: now}

	a, err := renderer.Render(order, now)
	require.NoError(t, err)
	b, err := renderer.Render(order, now)
	require.NoError(t, err)

	assert.Equal(t, pickup.Checksum(a), pickup.Checksum(b))
	assert.Contains(t, string(a), "Picked up:  -")
}
