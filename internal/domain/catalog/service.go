package catalog

import (
	"context"
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bookworm/backend/internal/domain/pricing"
	"github.com/bookworm/backend/internal/domain/review"
)

// Allowed page sizes for listings; anything else falls back to the default.
var pageSizes = []int{5, 15, 20, 25}

const (
	defaultPageSize = 10

	defaultOnSaleLimit      = 10
	defaultPopularLimit     = 8
	defaultRecommendedLimit = 8
)

// BookSummary is a catalog listing entry with all derived pricing and review
// fields resolved.
type BookSummary struct {
	ID            int64
	Title         string
	Summary       string
	CoverPhoto    string
	OriginalPrice decimal.Decimal
	FinalPrice    decimal.Decimal

	// Discount fields are nil when no discount is active.
	DiscountPrice  *decimal.Decimal
	DiscountAmount *decimal.Decimal

	CategoryID   int64
	CategoryName string
	AuthorID     int64
	AuthorName   string

	ReviewsCount int64
	AvgRating    float64
}

// BookPage is one page of a catalog listing. Total counts all rows matching
// the filter, not just the returned page.
type BookPage struct {
	Total int64
	Page  int
	Size  int
	Items []BookSummary
}

// SaleBook is an on-sale entry: a summary extended with the discount window
// and the saving expressed as a percentage of the list price.
type SaleBook struct {
	BookSummary
	DiscountPercent decimal.Decimal
	DiscountStart   time.Time
	DiscountEnd     *time.Time
}

// TopBooks is a ranking view result. Total reflects only the returned items.
type TopBooks struct {
	Total int
	Items []BookSummary
}

// SaleBooks is the on-sale ranking view result.
type SaleBooks struct {
	Total int
	Items []SaleBook
}

// DetailDiscount describes the active discount on a book detail view.
type DetailDiscount struct {
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Percent   decimal.Decimal
	StartDate time.Time
	EndDate   *time.Time
}

// BookDetail is the full single-book view.
type BookDetail struct {
	ID            int64
	Title         string
	Summary       string
	CoverPhoto    string
	OriginalPrice decimal.Decimal
	FinalPrice    decimal.Decimal
	Category      Category
	Author        Author
	ReviewsCount  int64
	AvgRating     float64

	// Discount is nil when no discount is active at the reference date.
	Discount *DetailDiscount
}

// ListBooksParams collects the raw listing inputs before normalization.
type ListBooksParams struct {
	Filter Filter
	Sort   Sort
	Page   int
	Size   int
}

// Service is the catalog query engine: filtered, sorted, paginated listings,
// the three top-N ranking views, the single-book detail view, and the
// reference lists backing the shop sidebar.
//
// All reads compare discount windows against a fixed reference date rather
// than the wall clock, matching the storefront contract. Every call
// recomputes derived values fresh; nothing is cached.
type Service struct {
	repo    Repository
	reviews review.Repository
	prices  *pricing.Resolver
	refDate time.Time
}

// NewService creates a catalog Service. refDate is the fixed reference date
// used for discount-activity checks on all read paths.
func NewService(repo Repository, reviews review.Repository, prices *pricing.Resolver, refDate time.Time) *Service {
	return &Service{
		repo:    repo,
		reviews: reviews,
		prices:  prices,
		refDate: refDate,
	}
}

// ListBooks returns one page of the catalog listing.
//
// Page numbers below 1 are clamped to 1. Sizes outside the allowed set fall
// back to the default. Total is computed from the filter alone: the
// popularity sort additionally hides unreviewed books from the page items,
// which is a property of the ordering, not of the filter.
func (s *Service) ListBooks(ctx context.Context, p ListBooksParams) (*BookPage, error) {
	size := normalizeSize(p.Size)
	page := p.Page
	if page < 1 {
		page = 1
	}

	total, err := s.repo.CountBooks(ctx, p.Filter)
	if err != nil {
		return nil, errors.Wrap(err, "count books")
	}

	rows, err := s.repo.ListBooks(ctx, p.Filter, p.Sort, size, (page-1)*size, s.refDate)
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}

	items := make([]BookSummary, len(rows))
	for i, row := range rows {
		items[i] = summarize(row)
	}

	return &BookPage{
		Total: total,
		Page:  page,
		Size:  size,
		Items: items,
	}, nil
}

// OnSale returns the top-limit books with an active discount, ordered by the
// absolute saving, largest first.
func (s *Service) OnSale(ctx context.Context, limit int) (*SaleBooks, error) {
	if limit < 1 {
		limit = defaultOnSaleLimit
	}

	rows, err := s.repo.OnSale(ctx, limit, s.refDate)
	if err != nil {
		return nil, errors.Wrap(err, "on-sale books")
	}

	items := make([]SaleBook, len(rows))
	for i, row := range rows {
		q := pricing.Compute(row.Price, &row.Discount.Price)
		items[i] = SaleBook{
			BookSummary:     summarize(row.BookRow),
			DiscountPercent: q.DiscountPercent,
			DiscountStart:   row.Discount.StartDate,
			DiscountEnd:     row.Discount.EndDate,
		}
	}

	return &SaleBooks{Total: len(items), Items: items}, nil
}

// Popular returns the top-limit books by review count. Books without reviews
// never appear.
func (s *Service) Popular(ctx context.Context, limit int) (*TopBooks, error) {
	if limit < 1 {
		limit = defaultPopularLimit
	}

	rows, err := s.repo.Popular(ctx, limit, s.refDate)
	if err != nil {
		return nil, errors.Wrap(err, "popular books")
	}
	return topBooks(rows, false), nil
}

// Recommended returns the top-limit books by mean rating. Books without
// reviews never appear; ratings are rounded to two decimals for display.
func (s *Service) Recommended(ctx context.Context, limit int) (*TopBooks, error) {
	if limit < 1 {
		limit = defaultRecommendedLimit
	}

	rows, err := s.repo.Recommended(ctx, limit, s.refDate)
	if err != nil {
		return nil, errors.Wrap(err, "recommended books")
	}
	return topBooks(rows, true), nil
}

// GetDetail assembles the full single-book view: category and author names,
// the review aggregate, and the active discount resolved at the reference
// date. Returns ErrBookNotFound for unknown IDs.
func (s *Service) GetDetail(ctx context.Context, bookID int64) (*BookDetail, error) {
	row, err := s.repo.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	stats, err := s.reviews.StatsForBook(ctx, bookID)
	if err != nil {
		return nil, errors.Wrapf(err, "review stats for book %d", bookID)
	}

	d, err := s.prices.ActiveDiscount(ctx, bookID, s.refDate)
	if err != nil {
		return nil, err
	}

	var q pricing.Quote
	if d != nil {
		q = pricing.Compute(row.Price, &d.Price)
	} else {
		q = pricing.Compute(row.Price, nil)
	}

	detail := &BookDetail{
		ID:            row.ID,
		Title:         row.Title,
		Summary:       row.Summary,
		CoverPhoto:    row.CoverPhoto,
		OriginalPrice: row.Price,
		FinalPrice:    q.FinalPrice,
		Category:      Category{ID: row.CategoryID, Name: row.CategoryName},
		Author:        Author{ID: row.AuthorID, Name: row.AuthorName},
		ReviewsCount:  stats.Count,
		AvgRating:     stats.AvgRating,
	}

	if q.Discounted {
		detail.Discount = &DetailDiscount{
			Price:     q.DiscountPrice,
			Amount:    q.DiscountAmount,
			Percent:   q.DiscountPercent,
			StartDate: d.StartDate,
			EndDate:   d.EndDate,
		}
	}

	return detail, nil
}

// Categories returns all categories for the filter sidebar.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// Authors returns all authors for the filter sidebar.
func (s *Service) Authors(ctx context.Context) ([]Author, error) {
	return s.repo.ListAuthors(ctx)
}

// summarize projects a joined row into a listing entry, deriving the pricing
// fields through a single quote computation.
func summarize(row BookRow) BookSummary {
	q := pricing.Compute(row.Price, row.DiscountPrice)

	s := BookSummary{
		ID:            row.ID,
		Title:         row.Title,
		Summary:       row.Summary,
		CoverPhoto:    row.CoverPhoto,
		OriginalPrice: row.Price,
		FinalPrice:    q.FinalPrice,
		CategoryID:    row.CategoryID,
		CategoryName:  row.CategoryName,
		AuthorID:      row.AuthorID,
		AuthorName:    row.AuthorName,
		ReviewsCount:  row.Reviews.Count,
		AvgRating:     row.Reviews.AvgRating,
	}
	if q.Discounted {
		s.DiscountPrice = &q.DiscountPrice
		s.DiscountAmount = &q.DiscountAmount
	}
	return s
}

func topBooks(rows []BookRow, roundRating bool) *TopBooks {
	items := make([]BookSummary, len(rows))
	for i, row := range rows {
		items[i] = summarize(row)
		if roundRating {
			items[i].AvgRating = math.Round(items[i].AvgRating*100) / 100
		}
	}
	return &TopBooks{Total: len(items), Items: items}
}

func normalizeSize(size int) int {
	for _, s := range pageSizes {
		if size == s {
			return size
		}
	}
	return defaultPageSize
}
