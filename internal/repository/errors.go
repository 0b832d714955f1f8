package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikolayk812/rentals/internal/domain"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrPickupNotFound  = fmt.Errorf("pickup document %w", domain.ErrNotFound)
)

const (
	pgCheckViolation   = "23514"
	pgQueryCanceled    = "57014"
	pgLockNotAvailable = "55P03"

	constraintReservedWithinTotal = "products_reserved_within_total"
	constraintReservedNonNegative = "products_reserved_non_negative"
)

// mapPgError translates driver failures into domain failure kinds, keeping the original in the chain.
func mapPgError(err error) error {
	if err == nil || errors.Is(err, domain.ErrTimeout) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgQueryCanceled, pgLockNotAvailable:
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	case pgCheckViolation:
		switch pgErr.ConstraintName {
		case constraintReservedWithinTotal:
			return fmt.Errorf("%w: %w", domain.ErrInsufficientStock, err)
		case constraintReservedNonNegative:
			return fmt.Errorf("%w: %w", domain.ErrOverRelease, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	return err
}
