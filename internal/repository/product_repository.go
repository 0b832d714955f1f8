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

type productRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{
		q:    db.New(tx),
		dbtx: tx, // use provided transaction instead
	}
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	dbProduct, err := r.q.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("q.GetProduct: %w", ErrProductNotFound)
		}
		return p, fmt.Errorf("q.GetProduct: %w", mapPgError(err))
	}

	return mapDBProductToDomain(dbProduct), nil
}

func (r *productRepository) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	product, err := withTx(ctx, r.dbtx, func(q *db.Queries) (domain.Product, error) {
		dbProduct, err := q.GetProductForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Product{}, fmt.Errorf("q.GetProductForUpdate: %w", ErrProductNotFound)
			}
			return domain.Product{}, fmt.Errorf("q.GetProductForUpdate: %w", mapPgError(err))
		}

		return mapDBProductToDomain(dbProduct), nil
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("withTx: %w", err)
	}

	return product, nil
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	if err := product.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("product.Validate: %w", err)
	}

	productID, err := r.q.InsertProduct(ctx, db.InsertProductParams{
		VendorID:         product.VendorID,
		Name:             product.Name,
		TotalQuantity:    int32(product.TotalQuantity),
		ReservedQuantity: int32(product.ReservedQuantity),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("q.InsertProduct: %w", mapPgError(err))
	}

	return productID, nil
}

func (r *productRepository) UpdateReserved(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.ID == uuid.Nil {
		return domain.Product{}, fmt.Errorf("productID is empty")
	}

	dbProduct, err := r.q.UpdateProductReserved(ctx, db.UpdateProductReservedParams{
		ReservedQuantity: int32(product.ReservedQuantity),
		ID:               product.ID,
		Version:          product.Version,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("q.UpdateProductReserved[version=%d]: %w", product.Version, domain.ErrConcurrentUpdate)
		}
		return domain.Product{}, fmt.Errorf("q.UpdateProductReserved: %w", mapPgError(err))
	}

	return mapDBProductToDomain(dbProduct), nil
}

func mapDBProductToDomain(p db.Product) domain.Product {
	return domain.Product{
		ID:               p.ID,
		VendorID:         p.VendorID,
		Name:             p.Name,
		TotalQuantity:    int(p.TotalQuantity),
		ReservedQuantity: int(p.ReservedQuantity),
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
