// Package catalog holds the bookstore reference entities and the read-side
// query engine that turns them into price-aware catalog views.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrBookNotFound is returned when a requested book does not exist.
var ErrBookNotFound = errors.New("book not found")

// Book is a catalog item available for purchase.
type Book struct {
	ID         int64
	CategoryID int64
	AuthorID   int64
	Title      string
	Summary    string
	Price      decimal.Decimal
	CoverPhoto string
}

// Author of one or more books.
type Author struct {
	ID   int64
	Name string
	Bio  string
}

// Category groups books for the shop filter sidebar.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// BookRepository provides direct book lookups, used by the order path to
// validate and price cart items.
type BookRepository interface {
	// GetByIDs returns the books matching any of the given IDs. Missing IDs
	// are simply absent from the result; callers detect them by comparing.
	GetByIDs(ctx context.Context, ids []int64) ([]Book, error)
}
