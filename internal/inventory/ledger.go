// Package inventory keeps per-product reserved quantities.
//
// Reserve and Release operate on a repository bound to the caller's
// transaction so a reservation commits or rolls back together with the order
// that owns it. Ledger wraps them into standalone vendor operations.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
	"go.uber.org/zap"
)

// Reserve locks the product row and moves quantity from available to reserved.
func Reserve(ctx context.Context, products port.ProductRepository, productID uuid.UUID, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, fmt.Errorf("quantity[%d] must be positive: %w", quantity, domain.ErrInvalidArgument)
	}

	p, err := products.GetProductForUpdate(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.GetProductForUpdate: %w", err)
	}

	return reserveLocked(ctx, products, p, quantity)
}

// Release locks the product row and returns quantity to available.
func Release(ctx context.Context, products port.ProductRepository, productID uuid.UUID, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, fmt.Errorf("quantity[%d] must be positive: %w", quantity, domain.ErrOverRelease)
	}

	p, err := products.GetProductForUpdate(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.GetProductForUpdate: %w", err)
	}

	return releaseLocked(ctx, products, p, quantity)
}

func reserveLocked(ctx context.Context, products port.ProductRepository, p domain.Product, quantity int) (domain.Product, error) {
	if err := p.Reserve(quantity); err != nil {
		return domain.Product{}, fmt.Errorf("product[%s].Reserve: %w", p.ID, err)
	}

	updated, err := products.UpdateReserved(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.UpdateReserved: %w", err)
	}

	return updated, nil
}

func releaseLocked(ctx context.Context, products port.ProductRepository, p domain.Product, quantity int) (domain.Product, error) {
	if err := p.Release(quantity); err != nil {
		return domain.Product{}, fmt.Errorf("product[%s].Release: %w", p.ID, err)
	}

	updated, err := products.UpdateReserved(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.UpdateReserved: %w", err)
	}

	return updated, nil
}

// Ledger serves vendor reserve and release requests, one transaction each.
type Ledger struct {
	store   port.Store
	timeout time.Duration
	logger  *zap.Logger
}

func NewLedger(store port.Store, timeout time.Duration, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:   store,
		timeout: timeout,
		logger:  logger.Named("inventory"),
	}
}

func (l *Ledger) Reserve(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, fmt.Errorf("quantity[%d] must be positive: %w", quantity, domain.ErrInvalidArgument)
	}

	product, err := l.apply(ctx, vc, productID, func(ctx context.Context, products port.ProductRepository, p domain.Product) (domain.Product, error) {
		return reserveLocked(ctx, products, p, quantity)
	})
	if err != nil {
		return domain.Product{}, err
	}

	l.logger.Info("reserved",
		zap.Stringer("productID", productID),
		zap.Int("quantity", quantity),
		zap.Int("reserved", product.ReservedQuantity),
		zap.Int("available", product.Available()))

	return product, nil
}

func (l *Ledger) Release(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, fmt.Errorf("quantity[%d] must be positive: %w", quantity, domain.ErrOverRelease)
	}

	product, err := l.apply(ctx, vc, productID, func(ctx context.Context, products port.ProductRepository, p domain.Product) (domain.Product, error) {
		return releaseLocked(ctx, products, p, quantity)
	})
	if err != nil {
		return domain.Product{}, err
	}

	l.logger.Info("released",
		zap.Stringer("productID", productID),
		zap.Int("quantity", quantity),
		zap.Int("reserved", product.ReservedQuantity),
		zap.Int("available", product.Available()))

	return product, nil
}

// apply locks the product, checks ownership and runs fn in one transaction.
func (l *Ledger) apply(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID,
	fn func(ctx context.Context, products port.ProductRepository, p domain.Product) (domain.Product, error),
) (domain.Product, error) {
	var result domain.Product

	err := port.InTxWithTimeout(ctx, l.store, l.timeout, func(ctx context.Context, tx port.Tx) error {
		p, err := tx.Products().GetProductForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("products.GetProductForUpdate: %w", err)
		}

		if err := vc.Authorize(p.VendorID); err != nil {
			return fmt.Errorf("vc.Authorize: %w", err)
		}

		result, err = fn(ctx, tx.Products(), p)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("store.InTx: %w", err)
	}

	return result, nil
}

func (l *Ledger) Get(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID) (domain.Product, error) {
	var product domain.Product

	err := port.InTxWithTimeout(ctx, l.store, l.timeout, func(ctx context.Context, tx port.Tx) error {
		p, err := tx.Products().GetProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("products.GetProduct: %w", err)
		}

		if err := vc.Authorize(p.VendorID); err != nil {
			return fmt.Errorf("vc.Authorize: %w", err)
		}

		product = p
		return nil
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("store.InTx: %w", err)
	}

	return product, nil
}

// Register adds a product with totalQuantity units, none reserved, owned by the capability's vendor.
func (l *Ledger) Register(ctx context.Context, vc domain.VendorCapability, name string, totalQuantity int) (domain.Product, error) {
	if err := vc.Authorize(vc.VendorID()); err != nil {
		return domain.Product{}, fmt.Errorf("vc.Authorize: %w", err)
	}

	var product domain.Product

	err := port.InTxWithTimeout(ctx, l.store, l.timeout, func(ctx context.Context, tx port.Tx) error {
		id, err := tx.Products().InsertProduct(ctx, domain.Product{
			VendorID:      vc.VendorID(),
			Name:          name,
			TotalQuantity: totalQuantity,
		})
		if err != nil {
			return fmt.Errorf("products.InsertProduct: %w", err)
		}

		product, err = tx.Products().GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("products.GetProduct: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("store.InTx: %w", err)
	}

	l.logger.Info("registered",
		zap.Stringer("productID", product.ID),
		zap.String("vendorID", product.VendorID),
		zap.Int("total", product.TotalQuantity))

	return product, nil
}
