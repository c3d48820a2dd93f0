package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookworm/backend/internal/domain/review"
)

const reviewStatsSQL = `SELECT COUNT(id), COALESCE(AVG(rating_star::float), 0)
	FROM review WHERE book_id = $1`

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// StatsForBook returns the review count and mean rating for a book.
func (r *ReviewRepository) StatsForBook(ctx context.Context, bookID int64) (review.Stats, error) {
	var st review.Stats
	err := r.pool.QueryRow(ctx, reviewStatsSQL, bookID).Scan(&st.Count, &st.AvgRating)
	if err != nil {
		return review.Stats{}, fmt.Errorf("review stats for book %d: %w", bookID, err)
	}
	return st, nil
}
