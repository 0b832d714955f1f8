// Package pickup produces the immutable hand-off document of a rental order.
package pickup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
)

type Generator struct {
	renderer *Renderer
	now      func() time.Time
}

func NewGenerator(renderer *Renderer, now func() time.Time) *Generator {
	return &Generator{renderer: renderer, now: now}
}

// Generate returns the order's pickup document, creating it on first call.
// Creation requires the order to be WITH_CUSTOMER. Later calls return the
// stored document unchanged whatever the order state.
func (g *Generator) Generate(ctx context.Context, pickups port.PickupRepository, order domain.Order) (domain.PickupDocument, bool, error) {
	existing, err := pickups.GetPickupDocument(ctx, order.ID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.PickupDocument{}, false, fmt.Errorf("pickups.GetPickupDocument: %w", err)
	}

	if order.Status != domain.OrderStatusWithCustomer {
		return domain.PickupDocument{}, false, fmt.Errorf("order[%s] is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	generatedAt := g.now()

	content, err := g.renderer.Render(order, generatedAt)
	if err != nil {
		return domain.PickupDocument{}, false, fmt.Errorf("renderer.Render: %w", err)
	}

	doc, created, err := pickups.InsertPickupDocument(ctx, domain.PickupDocument{
		OrderID:     order.ID,
		ProductID:   order.ProductID,
		VendorID:    order.VendorID,
		RenterID:    order.RenterID,
		Quantity:    order.Quantity,
		ContentType: ContentType,
		Content:     content,
		Checksum:    Checksum(content),
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return domain.PickupDocument{}, false, fmt.Errorf("pickups.InsertPickupDocument: %w", err)
	}

	return doc, created, nil
}

// Checksum is the hex sha256 of content.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
