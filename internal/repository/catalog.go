package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bookworm/backend/internal/domain/catalog"
	"github.com/bookworm/backend/internal/domain/pricing"
	"github.com/bookworm/backend/internal/domain/review"
)

// catalogCTEs computes per-book review aggregates and the winning active
// discount at the reference date ($1). DISTINCT ON with the price ordering
// picks the lowest discount price when several windows overlap.
const catalogCTEs = `WITH review_stats AS (
		SELECT book_id,
		       COUNT(id) AS review_count,
		       AVG(rating_star::float) AS avg_rating
		FROM review
		GROUP BY book_id
	), active_discount AS (
		SELECT DISTINCT ON (book_id)
		       id, book_id, discount_price, discount_start_date, discount_end_date
		FROM discount
		WHERE discount_start_date <= $1
		  AND (discount_end_date IS NULL OR discount_end_date >= $1)
		ORDER BY book_id, discount_price
	)`

const bookRowColumns = `b.id, b.category_id, b.author_id, b.book_title, b.book_summary,
	       b.book_price, COALESCE(b.book_cover_photo, ''),
	       c.category_name, a.author_name,
	       COALESCE(rs.review_count, 0), COALESCE(rs.avg_rating, 0),
	       ad.discount_price`

const (
	onSaleSQL = catalogCTEs + `
	SELECT ` + bookRowColumns + `,
	       ad.id, ad.discount_start_date, ad.discount_end_date
	FROM book b
	JOIN active_discount ad ON ad.book_id = b.id
	JOIN category c ON c.id = b.category_id
	JOIN author a ON a.id = b.author_id
	LEFT JOIN review_stats rs ON rs.book_id = b.id
	ORDER BY b.book_price - ad.discount_price DESC, b.id
	LIMIT $2`

	popularSQL = catalogCTEs + `
	SELECT ` + bookRowColumns + `
	FROM book b
	JOIN review_stats rs ON rs.book_id = b.id
	JOIN category c ON c.id = b.category_id
	JOIN author a ON a.id = b.author_id
	LEFT JOIN active_discount ad ON ad.book_id = b.id
	ORDER BY rs.review_count DESC, COALESCE(ad.discount_price, b.book_price), b.id
	LIMIT $2`

	recommendedSQL = catalogCTEs + `
	SELECT ` + bookRowColumns + `
	FROM book b
	JOIN review_stats rs ON rs.book_id = b.id
	JOIN category c ON c.id = b.category_id
	JOIN author a ON a.id = b.author_id
	LEFT JOIN active_discount ad ON ad.book_id = b.id
	ORDER BY rs.avg_rating DESC, COALESCE(ad.discount_price, b.book_price), b.id
	LIMIT $2`

	findBookSQL = `SELECT b.id, b.category_id, b.author_id, b.book_title, b.book_summary,
	       b.book_price, COALESCE(b.book_cover_photo, ''),
	       c.category_name, a.author_name
	FROM book b
	JOIN category c ON c.id = b.category_id
	JOIN author a ON a.id = b.author_id
	WHERE b.id = $1`

	listCategoriesSQL = `SELECT id, category_name, COALESCE(category_desc, '')
	FROM category ORDER BY category_name`

	listAuthorsSQL = `SELECT id, author_name, COALESCE(author_bio, '')
	FROM author ORDER BY author_name`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListBooks returns one page of joined catalog rows.
func (r *CatalogRepository) ListBooks(ctx context.Context, f catalog.Filter, sort catalog.Sort, limit, offset int, at time.Time) ([]catalog.BookRow, error) {
	args := []any{at}
	where := filterConds(f, &args)
	if sort == catalog.SortPopularityDesc {
		// Popularity ordering only ranks reviewed books.
		where = append(where, "rs.avg_rating > 0")
	}

	var sb strings.Builder
	sb.WriteString(catalogCTEs)
	sb.WriteString(`
	SELECT ` + bookRowColumns + `
	FROM book b
	JOIN category c ON c.id = b.category_id
	JOIN author a ON a.id = b.author_id
	LEFT JOIN review_stats rs ON rs.book_id = b.id
	LEFT JOIN active_discount ad ON ad.book_id = b.id`)
	if len(where) > 0 {
		sb.WriteString("\n\tWHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString("\n\tORDER BY " + orderClause(sort))

	args = append(args, limit)
	sb.WriteString(fmt.Sprintf("\n\tLIMIT $%d", len(args)))
	args = append(args, offset)
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return pgx.CollectRows(rows, scanBookRow)
}

// CountBooks returns the number of books matching the filter.
func (r *CatalogRepository) CountBooks(ctx context.Context, f catalog.Filter) (int64, error) {
	var args []any
	where := filterConds(f, &args)

	var sb strings.Builder
	sb.WriteString(`WITH review_stats AS (
		SELECT book_id, AVG(rating_star::float) AS avg_rating
		FROM review
		GROUP BY book_id
	)
	SELECT COUNT(b.id)
	FROM book b
	LEFT JOIN review_stats rs ON rs.book_id = b.id`)
	if len(where) > 0 {
		sb.WriteString("\n\tWHERE " + strings.Join(where, " AND "))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, sb.String(), args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return total, nil
}

// OnSale returns the top-limit discounted books, widest saving first.
func (r *CatalogRepository) OnSale(ctx context.Context, limit int, at time.Time) ([]catalog.SaleRow, error) {
	rows, err := r.pool.Query(ctx, onSaleSQL, at, limit)
	if err != nil {
		return nil, fmt.Errorf("listing on-sale books: %w", err)
	}
	return pgx.CollectRows(rows, scanSaleRow)
}

// Popular returns the top-limit reviewed books by review count.
func (r *CatalogRepository) Popular(ctx context.Context, limit int, at time.Time) ([]catalog.BookRow, error) {
	rows, err := r.pool.Query(ctx, popularSQL, at, limit)
	if err != nil {
		return nil, fmt.Errorf("listing popular books: %w", err)
	}
	return pgx.CollectRows(rows, scanBookRow)
}

// Recommended returns the top-limit reviewed books by mean rating.
func (r *CatalogRepository) Recommended(ctx context.Context, limit int, at time.Time) ([]catalog.BookRow, error) {
	rows, err := r.pool.Query(ctx, recommendedSQL, at, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recommended books: %w", err)
	}
	return pgx.CollectRows(rows, scanBookRow)
}

// FindBook returns a single book with its category and author names.
func (r *CatalogRepository) FindBook(ctx context.Context, id int64) (*catalog.DetailRow, error) {
	rows, err := r.pool.Query(ctx, findBookSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (catalog.DetailRow, error) {
		var d catalog.DetailRow
		err := row.Scan(
			&d.ID, &d.CategoryID, &d.AuthorID, &d.Title, &d.Summary,
			&d.Price, &d.CoverPhoto, &d.CategoryName, &d.AuthorName,
		)
		return d, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}
	return &row, nil
}

// ListCategories returns all categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name, &c.Description)
		return c, err
	})
}

// ListAuthors returns all authors ordered by name.
func (r *CatalogRepository) ListAuthors(ctx context.Context) ([]catalog.Author, error) {
	rows, err := r.pool.Query(ctx, listAuthorsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Author, error) {
		var a catalog.Author
		err := row.Scan(&a.ID, &a.Name, &a.Bio)
		return a, err
	})
}

// filterConds appends filter arguments to args and returns the matching SQL
// conditions, numbered after any arguments already present.
func filterConds(f catalog.Filter, args *[]any) []string {
	var conds []string
	if f.CategoryID != 0 {
		*args = append(*args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("b.category_id = $%d", len(*args)))
	}
	if f.AuthorID != 0 {
		*args = append(*args, f.AuthorID)
		conds = append(conds, fmt.Sprintf("b.author_id = $%d", len(*args)))
	}
	if f.MinRating > 0 {
		*args = append(*args, f.MinRating)
		conds = append(conds, fmt.Sprintf("rs.avg_rating >= $%d", len(*args)))
	}
	return conds
}

func orderClause(sort catalog.Sort) string {
	const finalPrice = "COALESCE(ad.discount_price, b.book_price)"
	switch sort {
	case catalog.SortPriceAsc:
		return finalPrice + ", b.id"
	case catalog.SortPriceDesc:
		return finalPrice + " DESC, b.id"
	case catalog.SortDiscountDesc:
		return "COALESCE(b.book_price - ad.discount_price, 0) DESC, " + finalPrice + ", b.id"
	case catalog.SortPopularityDesc:
		return "rs.review_count DESC, " + finalPrice + ", b.id"
	default:
		return "b.id DESC"
	}
}

func scanBookRow(row pgx.CollectableRow) (catalog.BookRow, error) {
	var (
		b  catalog.BookRow
		st review.Stats
		dp *decimal.Decimal
	)
	err := row.Scan(
		&b.ID, &b.CategoryID, &b.AuthorID, &b.Title, &b.Summary,
		&b.Price, &b.CoverPhoto, &b.CategoryName, &b.AuthorName,
		&st.Count, &st.AvgRating, &dp,
	)
	b.Reviews = st
	b.DiscountPrice = dp
	return b, err
}

func scanSaleRow(row pgx.CollectableRow) (catalog.SaleRow, error) {
	var (
		s  catalog.SaleRow
		st review.Stats
		dp *decimal.Decimal
		d  pricing.Discount
	)
	err := row.Scan(
		&s.ID, &s.CategoryID, &s.AuthorID, &s.Title, &s.Summary,
		&s.Price, &s.CoverPhoto, &s.CategoryName, &s.AuthorName,
		&st.Count, &st.AvgRating, &dp,
		&d.ID, &d.StartDate, &d.EndDate,
	)
	s.Reviews = st
	s.DiscountPrice = dp
	if dp != nil {
		d.Price = *dp
	}
	d.BookID = s.ID
	s.Discount = d
	return s, err
}
