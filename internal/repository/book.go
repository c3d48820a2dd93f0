package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookworm/backend/internal/domain/catalog"
)

const getBooksByIDsSQL = `SELECT b.id, b.category_id, b.author_id, b.book_title, b.book_summary,
	       b.book_price, COALESCE(b.book_cover_photo, '')
	FROM book b WHERE b.id = ANY($1)`

var _ catalog.BookRepository = (*BookRepository)(nil)

// BookRepository implements catalog.BookRepository backed by PostgreSQL.
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a BookRepository that uses the given pool.
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// GetByIDs returns the books matching any of the given IDs.
func (r *BookRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Book, error) {
	rows, err := r.pool.Query(ctx, getBooksByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting books by ids: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Book, error) {
		var b catalog.Book
		err := row.Scan(&b.ID, &b.CategoryID, &b.AuthorID, &b.Title, &b.Summary, &b.Price, &b.CoverPhoto)
		return b, err
	})
}
