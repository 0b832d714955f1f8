package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
)

type PickupRepository interface {
	GetPickupDocument(ctx context.Context, orderID uuid.UUID) (domain.PickupDocument, error)

	// InsertPickupDocument stores doc unless the order already has one.
	// It returns the stored document and whether this call created it.
	InsertPickupDocument(ctx context.Context, doc domain.PickupDocument) (domain.PickupDocument, bool, error)
}
