//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListBooks_Defaults(t *testing.T) {
	resp := doGet(t, "/api/books")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Total != 10 {
		t.Errorf("total: got %d, want 10", page.Total)
	}
	if page.Page != 1 || page.Size != 10 {
		t.Errorf("page/size: got %d/%d, want 1/10", page.Page, page.Size)
	}
	if len(page.Items) != 10 {
		t.Fatalf("items: got %d, want 10", len(page.Items))
	}
	// Default ordering is newest first.
	if page.Items[0].ID != 10 {
		t.Errorf("first item: got id %d, want 10", page.Items[0].ID)
	}
}

func TestListBooks_Pagination(t *testing.T) {
	resp := doGet(t, "/api/books?size=5&page=2")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Page != 2 || page.Size != 5 {
		t.Fatalf("page/size: got %d/%d, want 2/5", page.Page, page.Size)
	}
	if len(page.Items) != 5 {
		t.Fatalf("items: got %d, want 5", len(page.Items))
	}
	if page.Items[0].ID != 5 {
		t.Errorf("first item on page 2: got id %d, want 5", page.Items[0].ID)
	}
}

func TestListBooks_InvalidSizeFallsBack(t *testing.T) {
	resp := doGet(t, "/api/books?size=7&page=0")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Page != 1 {
		t.Errorf("page: got %d, want 1", page.Page)
	}
	if page.Size != 10 {
		t.Errorf("size: got %d, want 10", page.Size)
	}
}

func TestListBooks_FilterByCategory(t *testing.T) {
	resp := doGet(t, "/api/books?category_id=1")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Total != 4 {
		t.Errorf("total: got %d, want 4", page.Total)
	}
	for _, it := range page.Items {
		if it.CategoryID != 1 {
			t.Errorf("book %d: category %d, want 1", it.ID, it.CategoryID)
		}
	}
}

func TestListBooks_FilterByAuthor(t *testing.T) {
	resp := doGet(t, "/api/books?author_id=2")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Total != 4 {
		t.Errorf("total: got %d, want 4", page.Total)
	}
	for _, it := range page.Items {
		if it.AuthorName != "Carl Sagan" {
			t.Errorf("book %d: author %q, want Carl Sagan", it.ID, it.AuthorName)
		}
	}
}

func TestListBooks_FilterByMinRating(t *testing.T) {
	resp := doGet(t, "/api/books?min_rating=4")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Total != 4 {
		t.Errorf("total: got %d, want 4", page.Total)
	}
	for _, it := range page.Items {
		if it.AvgRating < 4 {
			t.Errorf("book %d: avg rating %.2f below threshold", it.ID, it.AvgRating)
		}
	}
}

func TestListBooks_SortPriceAsc(t *testing.T) {
	resp := doGet(t, "/api/books?sort_by=price_asc")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if len(page.Items) == 0 {
		t.Fatal("no items")
	}
	// Book 10 has an active discount down to 8.50, the lowest final price.
	if page.Items[0].ID != 10 {
		t.Errorf("first item: got id %d, want 10", page.Items[0].ID)
	}
	if page.Items[0].FinalPrice != 8.50 {
		t.Errorf("first final price: got %.2f, want 8.50", page.Items[0].FinalPrice)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].FinalPrice < page.Items[i-1].FinalPrice {
			t.Errorf("items not sorted by final price at index %d", i)
		}
	}
}

func TestListBooks_SortPopularityHidesUnreviewed(t *testing.T) {
	resp := doGet(t, "/api/books?sort_by=popularity_desc")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	// The total keeps counting every book; only the page items are
	// restricted to reviewed ones.
	if page.Total != 10 {
		t.Errorf("total: got %d, want 10", page.Total)
	}
	if len(page.Items) != 5 {
		t.Fatalf("items: got %d, want 5 reviewed books", len(page.Items))
	}
	if page.Items[0].ID != 7 {
		t.Errorf("most popular: got id %d, want 7", page.Items[0].ID)
	}
	for _, it := range page.Items {
		if it.ReviewsCount == 0 {
			t.Errorf("book %d has no reviews but appears in popularity sort", it.ID)
		}
	}
}

func TestListBooks_UnknownSortFallsBack(t *testing.T) {
	resp := doGet(t, "/api/books?sort_by=garbage")
	defer resp.Body.Close()

	page := decodeJSON[bookPageResponse](t, resp)
	if page.Items[0].ID != 10 {
		t.Errorf("first item: got id %d, want 10 (default order)", page.Items[0].ID)
	}
}

func TestListBooks_BadParams(t *testing.T) {
	for _, q := range []string{"category_id=abc", "page=x", "min_rating=high"} {
		resp := doGet(t, "/api/books?"+q)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("query %q: got %d, want 400", q, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestOnSale(t *testing.T) {
	resp := doGet(t, "/api/books/on-sale")
	defer resp.Body.Close()

	sale := decodeJSON[saleBooksResponse](t, resp)
	if sale.Total != 3 {
		t.Fatalf("total: got %d, want 3 active discounts", sale.Total)
	}

	// Ordered by absolute saving: book 4 (9.00), book 1 (5.00), book 10 (1.50).
	wantOrder := []int64{4, 1, 10}
	for i, want := range wantOrder {
		if sale.Items[i].ID != want {
			t.Errorf("position %d: got id %d, want %d", i, sale.Items[i].ID, want)
		}
	}

	top := sale.Items[0]
	if top.FinalPrice != 21.00 {
		t.Errorf("final price: got %.2f, want 21.00", top.FinalPrice)
	}
	if top.DiscountPercent != 30.00 {
		t.Errorf("discount percent: got %.2f, want 30.00", top.DiscountPercent)
	}
	if top.DiscountEnd != nil {
		t.Errorf("open-ended discount should have null end, got %q", *top.DiscountEnd)
	}

	// Book 6's discount expired before the reference date.
	for _, it := range sale.Items {
		if it.ID == 6 {
			t.Error("expired discount for book 6 appears on sale")
		}
	}
}

func TestPopular(t *testing.T) {
	resp := doGet(t, "/api/books/popular")
	defer resp.Body.Close()

	top := decodeJSON[topBooksResponse](t, resp)
	if top.Total != 5 {
		t.Fatalf("total: got %d, want 5 reviewed books", top.Total)
	}

	// Review count descending, cheaper final price breaking ties.
	wantOrder := []int64{7, 1, 4, 9, 2}
	for i, want := range wantOrder {
		if top.Items[i].ID != want {
			t.Errorf("position %d: got id %d, want %d", i, top.Items[i].ID, want)
		}
	}
}

func TestRecommended(t *testing.T) {
	resp := doGet(t, "/api/books/recommended")
	defer resp.Body.Close()

	top := decodeJSON[topBooksResponse](t, resp)
	if top.Total != 5 {
		t.Fatalf("total: got %d, want 5 reviewed books", top.Total)
	}

	// Mean rating descending, cheaper final price breaking ties (books 7
	// and 4 both average 4.0; book 7's final price is lower).
	wantOrder := []int64{9, 1, 7, 4, 2}
	for i, want := range wantOrder {
		if top.Items[i].ID != want {
			t.Errorf("position %d: got id %d, want %d", i, top.Items[i].ID, want)
		}
	}
	if top.Items[0].AvgRating != 5 {
		t.Errorf("top rating: got %.2f, want 5", top.Items[0].AvgRating)
	}
	if top.Items[1].AvgRating != 4.67 {
		t.Errorf("second rating: got %.2f, want 4.67 (rounded)", top.Items[1].AvgRating)
	}
}

func TestBookDetail_WithDiscount(t *testing.T) {
	resp := doGet(t, "/api/books/1")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	d := decodeJSON[bookDetailResponse](t, resp)
	if d.Title != "Dune" {
		t.Errorf("title: got %q, want Dune", d.Title)
	}
	if d.Category.Name != "Fiction" || d.Author.Name != "Frank Herbert" {
		t.Errorf("category/author: got %q/%q", d.Category.Name, d.Author.Name)
	}
	if d.OriginalPrice != 25.00 || d.FinalPrice != 20.00 {
		t.Errorf("prices: got %.2f/%.2f, want 25.00/20.00", d.OriginalPrice, d.FinalPrice)
	}
	if d.ReviewsCount != 3 {
		t.Errorf("reviews: got %d, want 3", d.ReviewsCount)
	}
	if d.Discount == nil {
		t.Fatal("expected active discount")
	}
	// Two discounts overlap for book 1; the lower price wins.
	if d.Discount.Price != 20.00 {
		t.Errorf("discount price: got %.2f, want 20.00", d.Discount.Price)
	}
	if d.Discount.Percent != 20.00 {
		t.Errorf("discount percent: got %.2f, want 20.00", d.Discount.Percent)
	}
}

func TestBookDetail_ExpiredDiscount(t *testing.T) {
	resp := doGet(t, "/api/books/6")
	defer resp.Body.Close()

	d := decodeJSON[bookDetailResponse](t, resp)
	if d.Discount != nil {
		t.Error("expired discount should not be exposed")
	}
	if d.FinalPrice != d.OriginalPrice {
		t.Errorf("final price %.2f should equal original %.2f", d.FinalPrice, d.OriginalPrice)
	}
}

func TestBookDetail_NotFound(t *testing.T) {
	resp := doGet(t, "/api/books/999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	e := decodeJSON[errorResponse](t, resp)
	if e.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", e.Code)
	}
}

func TestCategories(t *testing.T) {
	resp := doGet(t, "/api/categories")
	defer resp.Body.Close()

	list := decodeJSON[refListResponse](t, resp)
	if list.Total != 3 {
		t.Fatalf("total: got %d, want 3", list.Total)
	}
	// Ordered by name.
	want := []string{"Fiction", "History", "Science"}
	for i, name := range want {
		if list.Items[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, list.Items[i].Name, name)
		}
	}
}

func TestAuthors(t *testing.T) {
	resp := doGet(t, "/api/authors")
	defer resp.Body.Close()

	list := decodeJSON[refListResponse](t, resp)
	if list.Total != 3 {
		t.Fatalf("total: got %d, want 3", list.Total)
	}
	want := []string{"Carl Sagan", "Frank Herbert", "Mary Beard"}
	for i, name := range want {
		if list.Items[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, list.Items[i].Name, name)
		}
	}
}
