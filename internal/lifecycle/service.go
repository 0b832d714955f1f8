// Package lifecycle drives rental orders through
// CREATED -> RESERVED -> WITH_CUSTOMER -> RETURNED -> CLOSED, with CANCELLED
// reachable before pickup. Every operation is one unit of work: the order row,
// the inventory reservation, the pickup document and the audit event commit
// together or not at all.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/inventory"
	"github.com/nikolayk812/rentals/internal/latefee"
	"github.com/nikolayk812/rentals/internal/pickup"
	"github.com/nikolayk812/rentals/internal/port"
	"go.uber.org/zap"
)

type Config struct {
	Schedule domain.FeeSchedule
	// Timeout bounds each operation, zero means unbounded.
	Timeout time.Duration
}

type Service struct {
	store     port.Store
	generator *pickup.Generator
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(store port.Store, generator *pickup.Generator, cfg Config, now func() time.Time, logger *zap.Logger) (*Service, error) {
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Schedule.Validate: %w", err)
	}

	return &Service{
		store:     store,
		generator: generator,
		cfg:       cfg,
		now:       now,
		logger:    logger.Named("lifecycle"),
	}, nil
}

type CreateOrder struct {
	ProductID uuid.UUID
	Quantity  int
	RenterID  string
	DueAt     time.Time
}

// Create reserves the quantity and stores the order as RESERVED.
func (s *Service) Create(ctx context.Context, vc domain.VendorCapability, req CreateOrder) (domain.Order, error) {
	var order domain.Order

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		product, err := tx.Products().GetProductForUpdate(ctx, req.ProductID)
		if err != nil {
			return fmt.Errorf("products.GetProductForUpdate: %w", err)
		}

		if err := vc.Authorize(product.VendorID); err != nil {
			return fmt.Errorf("vc.Authorize: %w", err)
		}

		now := s.now()

		order, err = domain.NewOrder(product, req.RenterID, req.Quantity, req.DueAt, now)
		if err != nil {
			return fmt.Errorf("domain.NewOrder: %w", err)
		}

		if _, err := inventory.Reserve(ctx, tx.Products(), product.ID, order.Quantity); err != nil {
			return fmt.Errorf("inventory.Reserve: %w", err)
		}

		if err := order.MarkReserved(now); err != nil {
			return fmt.Errorf("order.MarkReserved: %w", err)
		}

		order.ID, err = tx.Orders().InsertOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("orders.InsertOrder: %w", err)
		}

		return appendEvent(ctx, tx, order, domain.OrderEventReserved, now, map[string]any{
			"productId": order.ProductID,
			"quantity":  order.Quantity,
			"dueAt":     order.DueAt,
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order reserved",
		zap.Stringer("orderID", order.ID),
		zap.Stringer("productID", order.ProductID),
		zap.Int("quantity", order.Quantity))

	return order, nil
}

// MarkWithCustomer hands the goods over and creates the pickup document.
// Repeating it returns the stored document, even once the order is closed.
func (s *Service) MarkWithCustomer(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, domain.PickupDocument, error) {
	var (
		order   domain.Order
		doc     domain.PickupDocument
		created bool
	)

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error

		order, err = lockOrder(ctx, tx, vc, orderID)
		if err != nil {
			return err
		}

		if order.Status == domain.OrderStatusReserved {
			now := s.now()

			if err := order.MarkWithCustomer(now); err != nil {
				return fmt.Errorf("order.MarkWithCustomer: %w", err)
			}

			if err := tx.Orders().UpdateOrder(ctx, order); err != nil {
				return fmt.Errorf("orders.UpdateOrder: %w", err)
			}

			if err := appendEvent(ctx, tx, order, domain.OrderEventWithCustomer, now, nil); err != nil {
				return err
			}
		}

		doc, created, err = s.generator.Generate(ctx, tx.Pickups(), order)
		if err != nil {
			return fmt.Errorf("generator.Generate: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, domain.PickupDocument{}, err
	}

	if created {
		s.logger.Info("order with customer",
			zap.Stringer("orderID", order.ID),
			zap.Stringer("documentID", doc.ID),
			zap.String("checksum", doc.Checksum))
	}

	return order, doc, nil
}

// ProcessReturn charges the late fee, releases the reservation and closes the order.
func (s *Service) ProcessReturn(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID, condition domain.Condition, returnedAt time.Time) (domain.Order, error) {
	if condition == "" {
		return domain.Order{}, fmt.Errorf("condition is empty: %w", domain.ErrInvalidArgument)
	}

	var order domain.Order

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error

		order, err = lockOrder(ctx, tx, vc, orderID)
		if err != nil {
			return err
		}

		if order.Status != domain.OrderStatusWithCustomer {
			return fmt.Errorf("return of %s order[%s]: %w", order.Status, order.ID, domain.ErrInvalidTransition)
		}

		fee, err := latefee.Compute(order.CreatedAt, order.DueAt, returnedAt, s.cfg.Schedule)
		if err != nil {
			return fmt.Errorf("latefee.Compute: %w", err)
		}

		if _, err := inventory.Release(ctx, tx.Products(), order.ProductID, order.Quantity); err != nil {
			return fmt.Errorf("inventory.Release: %w", err)
		}

		if err := order.MarkReturned(returnedAt, condition, fee); err != nil {
			return fmt.Errorf("order.MarkReturned: %w", err)
		}

		if err := appendEvent(ctx, tx, order, domain.OrderEventReturned, returnedAt, map[string]any{
			"condition": condition,
			"lateFee":   fee.Amount.StringFixed(2),
			"currency":  fee.Currency.String(),
		}); err != nil {
			return err
		}

		now := s.now()

		if err := order.Close(now); err != nil {
			return fmt.Errorf("order.Close: %w", err)
		}

		if err := tx.Orders().UpdateOrder(ctx, order); err != nil {
			return fmt.Errorf("orders.UpdateOrder: %w", err)
		}

		return appendEvent(ctx, tx, order, domain.OrderEventClosed, now, nil)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order returned",
		zap.Stringer("orderID", order.ID),
		zap.String("condition", string(*order.ReturnCondition)),
		zap.Stringer("lateFee", order.LateFee))

	return order, nil
}

// Cancel ends an order before pickup and gives back its reservation.
func (s *Service) Cancel(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error) {
	var order domain.Order

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error

		order, err = lockOrder(ctx, tx, vc, orderID)
		if err != nil {
			return err
		}

		held := order.HoldsReservation()
		now := s.now()

		if err := order.Cancel(now); err != nil {
			return fmt.Errorf("order.Cancel: %w", err)
		}

		if held {
			if _, err := inventory.Release(ctx, tx.Products(), order.ProductID, order.Quantity); err != nil {
				return fmt.Errorf("inventory.Release: %w", err)
			}
		}

		if err := tx.Orders().UpdateOrder(ctx, order); err != nil {
			return fmt.Errorf("orders.UpdateOrder: %w", err)
		}

		return appendEvent(ctx, tx, order, domain.OrderEventCancelled, now, map[string]any{
			"released": held,
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order cancelled", zap.Stringer("orderID", order.ID))

	return order, nil
}

func (s *Service) Get(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error) {
	var order domain.Order

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = readOrder(ctx, tx, vc, orderID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// Search is limited to the capability's own orders.
func (s *Service) Search(ctx context.Context, vc domain.VendorCapability, filter domain.OrderFilter) ([]domain.Order, error) {
	for _, vendorID := range filter.VendorIDs {
		if err := vc.Authorize(vendorID); err != nil {
			return nil, fmt.Errorf("vc.Authorize: %w", err)
		}
	}
	if err := vc.Authorize(vc.VendorID()); err != nil {
		return nil, fmt.Errorf("vc.Authorize: %w", err)
	}

	filter.VendorIDs = []string{vc.VendorID()}

	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w: %w", domain.ErrInvalidArgument, err)
	}

	var orders []domain.Order

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error

		orders, err = tx.Orders().SearchOrders(ctx, filter)
		if err != nil {
			return fmt.Errorf("orders.SearchOrders: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *Service) Events(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) ([]domain.OrderEvent, error) {
	var events []domain.OrderEvent

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if _, err := readOrder(ctx, tx, vc, orderID); err != nil {
			return err
		}

		var err error

		events, err = tx.Events().ListOrderEvents(ctx, orderID)
		if err != nil {
			return fmt.Errorf("events.ListOrderEvents: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *Service) PickupDocument(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.PickupDocument, error) {
	var doc domain.PickupDocument

	err := s.inTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if _, err := readOrder(ctx, tx, vc, orderID); err != nil {
			return err
		}

		var err error

		doc, err = tx.Pickups().GetPickupDocument(ctx, orderID)
		if err != nil {
			return fmt.Errorf("pickups.GetPickupDocument: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.PickupDocument{}, err
	}

	return doc, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	if err := port.InTxWithTimeout(ctx, s.store, s.cfg.Timeout, fn); err != nil {
		return fmt.Errorf("store.InTx: %w", err)
	}
	return nil
}

func lockOrder(ctx context.Context, tx port.Tx, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error) {
	order, err := tx.Orders().GetOrderForUpdate(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrderForUpdate: %w", err)
	}

	if err := vc.Authorize(order.VendorID); err != nil {
		return domain.Order{}, fmt.Errorf("vc.Authorize: %w", err)
	}

	return order, nil
}

func readOrder(ctx context.Context, tx port.Tx, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error) {
	order, err := tx.Orders().GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if err := vc.Authorize(order.VendorID); err != nil {
		return domain.Order{}, fmt.Errorf("vc.Authorize: %w", err)
	}

	return order, nil
}

func appendEvent(ctx context.Context, tx port.Tx, order domain.Order, eventType domain.OrderEventType, at time.Time, payload map[string]any) error {
	var raw []byte

	if payload != nil {
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
	}

	if err := tx.Events().AppendOrderEvent(ctx, domain.OrderEvent{
		OrderID:   order.ID,
		Type:      eventType,
		Payload:   raw,
		CreatedAt: at,
	}); err != nil {
		return fmt.Errorf("events.AppendOrderEvent[%s]: %w", eventType, err)
	}

	return nil
}
