package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookworm/backend/internal/domain/pricing"
	"github.com/bookworm/backend/internal/domain/review"
)

// Sort selects the ordering of a catalog listing.
type Sort string

// Supported sort modes. Anything else falls back to SortDefault (book id
// descending, newest first).
const (
	SortDefault        Sort = ""
	SortPriceAsc       Sort = "price_asc"
	SortPriceDesc      Sort = "price_desc"
	SortDiscountDesc   Sort = "discount_desc"
	SortPopularityDesc Sort = "popularity_desc"
)

// ParseSort maps a raw sort_by value to a Sort, treating unknown values as
// the default ordering.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortPriceAsc, SortPriceDesc, SortDiscountDesc, SortPopularityDesc:
		return Sort(s)
	default:
		return SortDefault
	}
}

// Filter restricts a catalog listing. Zero values mean "no restriction".
// MinRating, when positive, keeps only books whose mean rating reaches the
// threshold; books with no reviews can never satisfy it.
type Filter struct {
	CategoryID int64
	AuthorID   int64
	MinRating  float64
}

// BookRow is a joined catalog row as produced by the persistence layer:
// the book itself, its author and category names, its review aggregate, and
// the active discount price when one applies at the reference date.
type BookRow struct {
	Book
	CategoryName string
	AuthorName   string
	Reviews      review.Stats

	// DiscountPrice is nil when no discount is active. When several are
	// active at once, the lowest price wins.
	DiscountPrice *decimal.Decimal
}

// SaleRow is a BookRow joined against the full winning discount, so the
// on-sale view can expose the discount window dates.
type SaleRow struct {
	BookRow
	Discount pricing.Discount
}

// DetailRow is the base row for the single-book detail view. Review stats
// and the active discount are resolved separately by the service.
type DetailRow struct {
	Book
	CategoryName string
	AuthorName   string
}

// Repository is the persistence boundary for catalog reads. Implementations
// perform the joins, aggregation, ordering and pagination; the service layer
// projects the returned rows into response structures.
type Repository interface {
	// ListBooks returns one page of joined catalog rows. The reference date
	// governs which discounts count as active.
	ListBooks(ctx context.Context, f Filter, sort Sort, limit, offset int, at time.Time) ([]BookRow, error)

	// CountBooks returns the number of books matching the filter, before
	// pagination. Discount activity never affects the count.
	CountBooks(ctx context.Context, f Filter) (int64, error)

	// OnSale returns the top-limit books with an active discount, widest
	// discount first.
	OnSale(ctx context.Context, limit int, at time.Time) ([]SaleRow, error)

	// Popular returns the top-limit reviewed books, most reviewed first,
	// cheaper final price breaking ties.
	Popular(ctx context.Context, limit int, at time.Time) ([]BookRow, error)

	// Recommended returns the top-limit reviewed books, best mean rating
	// first, cheaper final price breaking ties.
	Recommended(ctx context.Context, limit int, at time.Time) ([]BookRow, error)

	// FindBook returns a single book with its author and category names, or
	// ErrBookNotFound.
	FindBook(ctx context.Context, id int64) (*DetailRow, error)

	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]Category, error)

	// ListAuthors returns all authors ordered by name.
	ListAuthors(ctx context.Context) ([]Author, error)
}
