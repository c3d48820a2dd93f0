package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookworm/backend/internal/domain/pricing"
)

// Lowest discount price wins when several windows overlap. $2 must be a
// day-granular time: the DATE columns compare as midnight, so a timestamp
// with a time-of-day component would miss the window's final day.
const activeDiscountSQL = `SELECT id, book_id, discount_price, discount_start_date, discount_end_date
	FROM discount
	WHERE book_id = $1
	  AND discount_start_date <= $2
	  AND (discount_end_date IS NULL OR discount_end_date >= $2)
	ORDER BY discount_price
	LIMIT 1`

var _ pricing.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements pricing.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// ActiveForBook returns the winning active discount for the book at the
// given date, or nil when none is active.
func (r *DiscountRepository) ActiveForBook(ctx context.Context, bookID int64, at time.Time) (*pricing.Discount, error) {
	rows, err := r.pool.Query(ctx, activeDiscountSQL, bookID, at)
	if err != nil {
		return nil, fmt.Errorf("getting discount for book %d: %w", bookID, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (pricing.Discount, error) {
		var d pricing.Discount
		err := row.Scan(&d.ID, &d.BookID, &d.Price, &d.StartDate, &d.EndDate)
		return d, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting discount for book %d: %w", bookID, err)
	}
	return &d, nil
}
