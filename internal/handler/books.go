package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bookworm/backend/internal/domain/catalog"
)

const dateLayout = "2006-01-02"

// bookItem is the listing representation of a book. Discount fields are
// omitted when no discount is active.
type bookItem struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Summary        string           `json:"summary"`
	Cover          string           `json:"cover"`
	OriginalPrice  decimal.Decimal  `json:"original_price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	FinalPrice     decimal.Decimal  `json:"final_price"`
	CategoryID     int64            `json:"category_id"`
	CategoryName   string           `json:"category_name"`
	AuthorID       int64            `json:"author_id"`
	AuthorName     string           `json:"author_name"`
	ReviewsCount   int64            `json:"reviews_count"`
	AvgRating      float64          `json:"avg_rating"`
}

type saleBookItem struct {
	bookItem
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountStart   string          `json:"discount_start"`
	DiscountEnd     *string         `json:"discount_end"`
}

type bookPageResponse struct {
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Items []bookItem `json:"items"`
}

type topBooksResponse struct {
	Total int        `json:"total"`
	Items []bookItem `json:"items"`
}

type saleBooksResponse struct {
	Total int            `json:"total"`
	Items []saleBookItem `json:"items"`
}

type refItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type detailDiscount struct {
	Price     decimal.Decimal `json:"discount_price"`
	Amount    decimal.Decimal `json:"discount_amount"`
	Percent   decimal.Decimal `json:"discount_percent"`
	StartDate string          `json:"discount_start"`
	EndDate   *string         `json:"discount_end"`
}

type bookDetailResponse struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Summary       string          `json:"summary"`
	Cover         string          `json:"cover"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	Category      refItem         `json:"category"`
	Author        refItem         `json:"author"`
	ReviewsCount  int64           `json:"reviews_count"`
	AvgRating     float64         `json:"avg_rating"`
	Discount      *detailDiscount `json:"discount,omitempty"`
}

// listBooks handles GET /books with filter, sort and pagination query
// parameters.
func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var p catalog.ListBooksParams
	p.Sort = catalog.ParseSort(q.Get("sort_by"))

	var err error
	if p.Filter.CategoryID, err = optionalID(q.Get("category_id")); err != nil {
		writeBadRequest(w, "category_id must be an integer")
		return
	}
	if p.Filter.AuthorID, err = optionalID(q.Get("author_id")); err != nil {
		writeBadRequest(w, "author_id must be an integer")
		return
	}
	if raw := q.Get("min_rating"); raw != "" {
		p.Filter.MinRating, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeBadRequest(w, "min_rating must be a number")
			return
		}
	}
	if p.Page, err = optionalInt(q.Get("page")); err != nil {
		writeBadRequest(w, "page must be an integer")
		return
	}
	if p.Size, err = optionalInt(q.Get("size")); err != nil {
		writeBadRequest(w, "size must be an integer")
		return
	}

	page, err := h.catalog.ListBooks(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := bookPageResponse{
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Items: make([]bookItem, len(page.Items)),
	}
	for i, b := range page.Items {
		resp.Items[i] = h.bookItem(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// onSaleBooks handles GET /books/on-sale.
func (h *Handler) onSaleBooks(w http.ResponseWriter, r *http.Request) {
	limit, err := optionalInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}

	sale, err := h.catalog.OnSale(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := saleBooksResponse{
		Total: sale.Total,
		Items: make([]saleBookItem, len(sale.Items)),
	}
	for i, b := range sale.Items {
		resp.Items[i] = saleBookItem{
			bookItem:        h.bookItem(b.BookSummary),
			DiscountPercent: b.DiscountPercent,
			DiscountStart:   b.DiscountStart.Format(dateLayout),
			DiscountEnd:     formatDate(b.DiscountEnd),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// popularBooks handles GET /books/popular.
func (h *Handler) popularBooks(w http.ResponseWriter, r *http.Request) {
	h.topBooks(w, r, h.catalog.Popular)
}

// recommendedBooks handles GET /books/recommended.
func (h *Handler) recommendedBooks(w http.ResponseWriter, r *http.Request) {
	h.topBooks(w, r, h.catalog.Recommended)
}

func (h *Handler) topBooks(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, limit int) (*catalog.TopBooks, error)) {
	limit, err := optionalInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}

	top, err := fetch(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := topBooksResponse{
		Total: top.Total,
		Items: make([]bookItem, len(top.Items)),
	}
	for i, b := range top.Items {
		resp.Items[i] = h.bookItem(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// bookDetail handles GET /books/{bookID}.
func (h *Handler) bookDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "book id must be an integer")
		return
	}

	d, err := h.catalog.GetDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := bookDetailResponse{
		ID:            d.ID,
		Title:         d.Title,
		Summary:       d.Summary,
		Cover:         h.cover(d.CoverPhoto),
		OriginalPrice: d.OriginalPrice,
		FinalPrice:    d.FinalPrice,
		Category:      refItem{ID: d.Category.ID, Name: d.Category.Name},
		Author:        refItem{ID: d.Author.ID, Name: d.Author.Name},
		ReviewsCount:  d.ReviewsCount,
		AvgRating:     d.AvgRating,
	}
	if d.Discount != nil {
		resp.Discount = &detailDiscount{
			Price:     d.Discount.Price,
			Amount:    d.Discount.Amount,
			Percent:   d.Discount.Percent,
			StartDate: d.Discount.StartDate.Format(dateLayout),
			EndDate:   formatDate(d.Discount.EndDate),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) bookItem(b catalog.BookSummary) bookItem {
	return bookItem{
		ID:             b.ID,
		Title:          b.Title,
		Summary:        b.Summary,
		Cover:          h.cover(b.CoverPhoto),
		OriginalPrice:  b.OriginalPrice,
		DiscountPrice:  b.DiscountPrice,
		DiscountAmount: b.DiscountAmount,
		FinalPrice:     b.FinalPrice,
		CategoryID:     b.CategoryID,
		CategoryName:   b.CategoryName,
		AuthorID:       b.AuthorID,
		AuthorName:     b.AuthorName,
		ReviewsCount:   b.ReviewsCount,
		AvgRating:      b.AvgRating,
	}
}

func optionalID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
