package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/inventory"
	"github.com/nikolayk812/rentals/internal/lifecycle"
	"github.com/nikolayk812/rentals/internal/pickup"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/nikolayk812/rentals/internal/repository/inmem"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fiveADay = domain.FeeSchedule{
	Currency: currency.USD,
	Rules:    []domain.FeeRule{{ThresholdDays: 0, DailyRate: decimal.NewFromInt(5)}},
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	store   port.Store
	ledger  *inventory.Ledger
	service *lifecycle.Service
	clock   *clock
	vendor  domain.VendorCapability
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := inmem.NewStore()
	c := &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}

	renderer, err := pickup.NewRenderer()
	require.NoError(t, err)

	service, err := lifecycle.NewService(store, pickup.NewGenerator(renderer, c.Now),
		lifecycle.Config{Schedule: fiveADay, Timeout: time.Second}, c.Now, logger)
	require.NoError(t, err)

	vc, err := domain.NewVendorCapability(domain.Principal{ID: "vendor-1", Role: domain.RoleVendor})
	require.NoError(t, err)

	return &fixture{
		store:   store,
		ledger:  inventory.NewLedger(store, time.Second, logger),
		service: service,
		clock:   c,
		vendor:  vc,
	}
}

func (f *fixture) product(t *testing.T, total int) domain.Product {
	t.Helper()

	p, err := f.ledger.Register(t.Context(), f.vendor, "projector", total)
	require.NoError(t, err)
	return p
}

func (f *fixture) create(t *testing.T, productID uuid.UUID, quantity int, dueAt time.Time) domain.Order {
	t.Helper()

	order, err := f.service.Create(t.Context(), f.vendor, lifecycle.CreateOrder{
		ProductID: productID,
		Quantity:  quantity,
		RenterID:  "renter-1",
		DueAt:     dueAt,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) reserved(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	p, err := f.ledger.Get(t.Context(), f.vendor, productID)
	require.NoError(t, err)
	return p.ReservedQuantity
}

func TestNewServiceRejectsInvalidSchedule(t *testing.T) {
	_, err := lifecycle.NewService(inmem.NewStore(), nil, lifecycle.Config{}, time.Now, zaptest.NewLogger(t))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 3)
	due := f.clock.Now().Add(72 * time.Hour)

	tests := []struct {
		name      string
		req       lifecycle.CreateOrder
		wantError error
	}{
		{
			name: "reserves stock: ok",
			req:  lifecycle.CreateOrder{ProductID: p.ID, Quantity: 2, RenterID: "r1", DueAt: due},
		},
		{
			name:      "more than available",
			req:       lifecycle.CreateOrder{ProductID: p.ID, Quantity: 2, RenterID: "r1", DueAt: due},
			wantError: domain.ErrInsufficientStock,
		},
		{
			name:      "due in the past",
			req:       lifecycle.CreateOrder{ProductID: p.ID, Quantity: 1, RenterID: "r1", DueAt: f.clock.Now().Add(-time.Hour)},
			wantError: domain.ErrInvalidDateRange,
		},
		{
			name:      "no renter",
			req:       lifecycle.CreateOrder{ProductID: p.ID, Quantity: 1, DueAt: due},
			wantError: domain.ErrInvalidArgument,
		},
		{
			name:      "unknown product",
			req:       lifecycle.CreateOrder{ProductID: uuid.New(), Quantity: 1, RenterID: "r1", DueAt: due},
			wantError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.reserved(t, p.ID)

			order, err := f.service.Create(t.Context(), f.vendor, tt.req)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				assert.Equal(t, before, f.reserved(t, p.ID))
				return
			}
			require.NoError(t, err)

			assert.Equal(t, domain.OrderStatusReserved, order.Status)
			assert.NotNil(t, order.ReservedAt)
			assert.Equal(t, before+tt.req.Quantity, f.reserved(t, p.ID))

			stored, err := f.service.Get(t.Context(), f.vendor, order.ID)
			require.NoError(t, err)
			assert.Equal(t, order, stored)
		})
	}
}

// Order of two units created June 1, due June 10, picked up, returned June 12 GOOD.
func TestRentalScenario(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 5)
	order := f.create(t, p.ID, 2, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, f.reserved(t, p.ID))

	f.clock.Set(time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC))

	withCustomer, doc, err := f.service.MarkWithCustomer(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusWithCustomer, withCustomer.Status)
	assert.Equal(t, order.ID, doc.OrderID)
	assert.Equal(t, 2, doc.Quantity)
	assert.NotEmpty(t, doc.Checksum)

	returnedAt := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	f.clock.Set(returnedAt)

	closed, err := f.service.ProcessReturn(ctx, f.vendor, order.ID, domain.ConditionGood, returnedAt)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusClosed, closed.Status)
	require.NotNil(t, closed.LateFee)
	assert.Equal(t, "10.00 USD", closed.LateFee.String())
	assert.Equal(t, lo.ToPtr(domain.ConditionGood), closed.ReturnCondition)
	assert.Equal(t, 0, f.reserved(t, p.ID))

	events, err := f.service.Events(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderEventType{
		domain.OrderEventReserved,
		domain.OrderEventWithCustomer,
		domain.OrderEventReturned,
		domain.OrderEventClosed,
	}, lo.Map(events, func(e domain.OrderEvent, _ int) domain.OrderEventType { return e.Type }))

	stored, err := f.service.PickupDocument(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestMarkWithCustomerReplay(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 1)
	order := f.create(t, p.ID, 1, f.clock.Now().Add(24*time.Hour))

	_, first, err := f.service.MarkWithCustomer(ctx, f.vendor, order.ID)
	require.NoError(t, err)

	f.clock.Set(f.clock.Now().Add(time.Hour))

	_, second, err := f.service.MarkWithCustomer(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	events, err := f.service.Events(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestMarkWithCustomerReplayAfterClose(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 1)
	order := f.create(t, p.ID, 1, f.clock.Now().Add(24*time.Hour))

	_, first, err := f.service.MarkWithCustomer(ctx, f.vendor, order.ID)
	require.NoError(t, err)

	_, err = f.service.ProcessReturn(ctx, f.vendor, order.ID, domain.ConditionGood, f.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	closed, second, err := f.service.MarkWithCustomer(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.OrderStatusClosed, closed.Status)

	events, err := f.service.Events(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestProcessReturnFromWrongState(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 2)
	order := f.create(t, p.ID, 2, f.clock.Now().Add(24*time.Hour))

	_, err := f.service.ProcessReturn(ctx, f.vendor, order.ID, domain.ConditionGood, f.clock.Now())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := f.service.Get(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReserved, stored.Status)
	assert.Equal(t, 2, f.reserved(t, p.ID))
}

func TestProcessReturnIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 2)
	order := f.create(t, p.ID, 2, f.clock.Now().Add(24*time.Hour))

	_, _, err := f.service.MarkWithCustomer(ctx, f.vendor, order.ID)
	require.NoError(t, err)

	// returned before it was created: fee calculation fails
	_, err = f.service.ProcessReturn(ctx, f.vendor, order.ID, domain.ConditionDamaged, order.CreatedAt.Add(-time.Hour))
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	stored, err := f.service.Get(ctx, f.vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusWithCustomer, stored.Status)
	assert.Nil(t, stored.LateFee)
	assert.Nil(t, stored.ReturnCondition)
	assert.Equal(t, 2, f.reserved(t, p.ID))

	_, err = f.service.ProcessReturn(ctx, f.vendor, order.ID, "", f.clock.Now())
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 4)

	reserved := f.create(t, p.ID, 3, f.clock.Now().Add(24*time.Hour))
	assert.Equal(t, 3, f.reserved(t, p.ID))

	cancelled, err := f.service.Cancel(ctx, f.vendor, reserved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 0, f.reserved(t, p.ID))

	_, err = f.service.Cancel(ctx, f.vendor, reserved.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	picked := f.create(t, p.ID, 1, f.clock.Now().Add(24*time.Hour))
	_, _, err = f.service.MarkWithCustomer(ctx, f.vendor, picked.ID)
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, f.vendor, picked.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 1, f.reserved(t, p.ID))

	_, _, err = f.service.MarkWithCustomer(ctx, f.vendor, reserved.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestForeignVendorIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 1)
	order := f.create(t, p.ID, 1, f.clock.Now().Add(24*time.Hour))

	other, err := domain.NewVendorCapability(domain.Principal{ID: "vendor-2", Role: domain.RoleVendor})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, other, lifecycle.CreateOrder{ProductID: p.ID, Quantity: 1, RenterID: "r", DueAt: f.clock.Now().Add(time.Hour)})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Get(ctx, other, order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = f.service.MarkWithCustomer(ctx, other, order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Cancel(ctx, other, order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Search(ctx, other, domain.OrderFilter{VendorIDs: []string{"vendor-1"}})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Get(ctx, domain.VendorCapability{}, order.ID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := f.product(t, 5)
	o1 := f.create(t, p.ID, 1, f.clock.Now().Add(24*time.Hour))
	o2 := f.create(t, p.ID, 1, f.clock.Now().Add(48*time.Hour))

	_, err := f.service.Cancel(ctx, f.vendor, o2.ID)
	require.NoError(t, err)

	reserved, err := f.service.Search(ctx, f.vendor, domain.OrderFilter{Statuses: []domain.OrderStatus{domain.OrderStatusReserved}})
	require.NoError(t, err)
	require.Len(t, reserved, 1)
	assert.Equal(t, o1.ID, reserved[0].ID)

	all, err := f.service.Search(ctx, f.vendor, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.service.Search(ctx, f.vendor, domain.OrderFilter{Statuses: []domain.OrderStatus{"LOST"}})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTimeout(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 1)

	held := make(chan struct{})
	done := make(chan struct{})

	// occupy the store so the next unit cannot start in time
	go func() {
		defer close(done)
		_ = f.store.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
			close(held)
			time.Sleep(1500 * time.Millisecond)
			return nil
		})
	}()
	<-held

	_, err := f.service.Create(t.Context(), f.vendor, lifecycle.CreateOrder{ProductID: p.ID, Quantity: 1, RenterID: "r", DueAt: f.clock.Now().Add(time.Hour)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout), "unexpected error: %v", err)

	<-done
	assert.Equal(t, 0, f.reserved(t, p.ID))
}
