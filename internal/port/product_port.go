package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	// GetProductForUpdate locks the product row until the surrounding transaction ends.
	GetProductForUpdate(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)

	// UpdateReserved persists product.ReservedQuantity guarded by product.Version
	// and returns the stored row with the bumped version.
	UpdateReserved(ctx context.Context, product domain.Product) (domain.Product, error)
}
