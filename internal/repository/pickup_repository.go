package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rentals/internal/db"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/port"
)

type pickupRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewPickup(pool *pgxpool.Pool) port.PickupRepository {
	return &pickupRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewPickupWithTx(tx pgx.Tx) port.PickupRepository {
	return &pickupRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *pickupRepository) GetPickupDocument(ctx context.Context, orderID uuid.UUID) (domain.PickupDocument, error) {
	dbDoc, err := r.q.GetPickupDocument(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PickupDocument{}, fmt.Errorf("q.GetPickupDocument: %w", ErrPickupNotFound)
		}
		return domain.PickupDocument{}, fmt.Errorf("q.GetPickupDocument: %w", mapPgError(err))
	}

	return mapDBPickupToDomain(dbDoc), nil
}

func (r *pickupRepository) InsertPickupDocument(ctx context.Context, doc domain.PickupDocument) (domain.PickupDocument, bool, error) {
	if doc.OrderID == uuid.Nil {
		return domain.PickupDocument{}, false, errors.New("orderID is empty")
	}
	if len(doc.Content) == 0 {
		return domain.PickupDocument{}, false, errors.New("content is empty")
	}

	type result struct {
		doc     domain.PickupDocument
		created bool
	}

	res, err := withTx(ctx, r.dbtx, func(q *db.Queries) (result, error) {
		dbDoc, err := q.InsertPickupDocument(ctx, db.InsertPickupDocumentParams{
			OrderID:     doc.OrderID,
			ProductID:   doc.ProductID,
			VendorID:    doc.VendorID,
			RenterID:    doc.RenterID,
			Quantity:    int32(doc.Quantity),
			ContentType: doc.ContentType,
			Content:     doc.Content,
			Checksum:    doc.Checksum,
			GeneratedAt: doc.GeneratedAt,
		})
		if err == nil {
			return result{doc: mapDBPickupToDomain(dbDoc), created: true}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return result{}, fmt.Errorf("q.InsertPickupDocument: %w", mapPgError(err))
		}

		// ON CONFLICT DO NOTHING returned no row: the order already has a document
		dbDoc, err = q.GetPickupDocument(ctx, doc.OrderID)
		if err != nil {
			return result{}, fmt.Errorf("q.GetPickupDocument: %w", mapPgError(err))
		}

		return result{doc: mapDBPickupToDomain(dbDoc)}, nil
	})
	if err != nil {
		return domain.PickupDocument{}, false, fmt.Errorf("withTx: %w", err)
	}

	return res.doc, res.created, nil
}

func mapDBPickupToDomain(d db.PickupDocument) domain.PickupDocument {
	return domain.PickupDocument{
		ID:          d.ID,
		OrderID:     d.OrderID,
		ProductID:   d.ProductID,
		VendorID:    d.VendorID,
		RenterID:    d.RenterID,
		Quantity:    int(d.Quantity),
		ContentType: d.ContentType,
		Content:     d.Content,
		Checksum:    d.Checksum,
		GeneratedAt: d.GeneratedAt,
	}
}
