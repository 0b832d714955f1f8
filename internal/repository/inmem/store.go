// Package inmem keeps rental state in process memory. It backs tests and the
// development mode of the daemon; state is lost on restart.
package inmem

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/samber/lo"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrPickupNotFound  = fmt.Errorf("pickup document %w", domain.ErrNotFound)
)

type state struct {
	products map[uuid.UUID]domain.Product
	orders   map[uuid.UUID]domain.Order
	pickups  map[uuid.UUID]domain.PickupDocument // by order ID
	events   []domain.OrderEvent
	eventSeq int64
}

func (s *state) clone() *state {
	return &state{
		products: maps.Clone(s.products),
		orders:   maps.Clone(s.orders),
		pickups:  maps.Clone(s.pickups),
		events:   slices.Clone(s.events),
		eventSeq: s.eventSeq,
	}
}

// Store serializes units of work: one runs at a time against a private copy
// of the state which replaces the shared state only when the unit succeeds.
type Store struct {
	sem   chan struct{}
	state *state
	now   func() time.Time
}

var _ port.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		sem: make(chan struct{}, 1),
		state: &state{
			products: map[uuid.UUID]domain.Product{},
			orders:   map[uuid.UUID]domain.Order{},
			pickups:  map[uuid.UUID]domain.PickupDocument{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("acquire: %w: %w", domain.ErrTimeout, ctx.Err())
	}
	defer func() { <-s.sem }()

	work := s.state.clone()

	if err := fn(ctx, &tx{s: work, now: s.now}); err != nil {
		return err
	}

	// a unit that outlived its deadline is not committed
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w: %w", domain.ErrTimeout, err)
	}

	s.state = work
	return nil
}

type tx struct {
	s   *state
	now func() time.Time
}

func (t *tx) Products() port.ProductRepository  { return productRepository{t} }
func (t *tx) Orders() port.OrderRepository      { return orderRepository{t} }
func (t *tx) Events() port.OrderEventRepository { return eventRepository{t} }
func (t *tx) Pickups() port.PickupRepository    { return pickupRepository{t} }

type productRepository struct{ *tx }

func (r productRepository) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r productRepository) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	return r.GetProduct(ctx, productID)
}

func (r productRepository) InsertProduct(_ context.Context, product domain.Product) (uuid.UUID, error) {
	if err := product.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("product.Validate: %w", err)
	}

	now := r.now()

	product.ID = uuid.New()
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now

	r.s.products[product.ID] = product
	return product.ID, nil
}

func (r productRepository) UpdateReserved(_ context.Context, product domain.Product) (domain.Product, error) {
	stored, ok := r.s.products[product.ID]
	if !ok || stored.Version != product.Version {
		return domain.Product{}, fmt.Errorf("version=%d: %w", product.Version, domain.ErrConcurrentUpdate)
	}

	switch {
	case product.ReservedQuantity < 0:
		return domain.Product{}, fmt.Errorf("reserved quantity[%d]: %w", product.ReservedQuantity, domain.ErrOverRelease)
	case product.ReservedQuantity > stored.TotalQuantity:
		return domain.Product{}, fmt.Errorf("reserved quantity[%d]: %w", product.ReservedQuantity, domain.ErrInsufficientStock)
	}

	stored.ReservedQuantity = product.ReservedQuantity
	stored.Version++
	stored.UpdatedAt = r.now()

	r.s.products[stored.ID] = stored
	return stored, nil
}

type orderRepository struct{ *tx }

func (r orderRepository) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (r orderRepository) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return r.GetOrder(ctx, orderID)
}

func (r orderRepository) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	matches := func(o domain.Order) bool {
		return matchAny(filter.IDs, o.ID) &&
			matchAny(filter.ProductIDs, o.ProductID) &&
			matchAny(filter.VendorIDs, o.VendorID) &&
			matchAny(filter.RenterIDs, o.RenterID) &&
			matchAny(filter.Statuses, o.Status) &&
			filter.DueAt.Contains(o.DueAt) &&
			filter.CreatedAt.Contains(o.CreatedAt)
	}

	orders := lo.Filter(slices.Collect(maps.Values(r.s.orders)), func(o domain.Order, _ int) bool {
		return matches(o)
	})

	slices.SortFunc(orders, func(a, b domain.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return orders, nil
}

func matchAny[T comparable](allowed []T, v T) bool {
	return len(allowed) == 0 || lo.Contains(allowed, v)
}

func (r orderRepository) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	if _, ok := r.s.products[order.ProductID]; !ok {
		return uuid.Nil, ErrProductNotFound
	}
	if order.Quantity <= 0 {
		return uuid.Nil, fmt.Errorf("quantity is not positive")
	}

	order.ID = uuid.New()

	r.s.orders[order.ID] = order
	return order.ID, nil
}

func (r orderRepository) UpdateOrder(_ context.Context, order domain.Order) error {
	if _, ok := r.s.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}

	r.s.orders[order.ID] = order
	return nil
}

type eventRepository struct{ *tx }

func (r eventRepository) AppendOrderEvent(_ context.Context, event domain.OrderEvent) error {
	if _, ok := r.s.orders[event.OrderID]; !ok {
		return ErrOrderNotFound
	}

	r.s.eventSeq++
	event.ID = r.s.eventSeq
	if event.Payload == nil {
		event.Payload = []byte(`{}`)
	}

	r.s.events = append(r.s.events, event)
	return nil
}

func (r eventRepository) ListOrderEvents(_ context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error) {
	return lo.Filter(r.s.events, func(e domain.OrderEvent, _ int) bool {
		return e.OrderID == orderID
	}), nil
}

type pickupRepository struct{ *tx }

func (r pickupRepository) GetPickupDocument(_ context.Context, orderID uuid.UUID) (domain.PickupDocument, error) {
	doc, ok := r.s.pickups[orderID]
	if !ok {
		return domain.PickupDocument{}, ErrPickupNotFound
	}
	return doc, nil
}

func (r pickupRepository) InsertPickupDocument(_ context.Context, doc domain.PickupDocument) (domain.PickupDocument, bool, error) {
	if existing, ok := r.s.pickups[doc.OrderID]; ok {
		return existing, false, nil
	}
	if _, ok := r.s.orders[doc.OrderID]; !ok {
		return domain.PickupDocument{}, false, ErrOrderNotFound
	}

	doc.ID = uuid.New()

	r.s.pickups[doc.OrderID] = doc
	return doc, true, nil
}
