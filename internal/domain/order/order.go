// Package order implements cart validation, order-time price snapshotting,
// and atomic order persistence.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item quantity bounds per line item.
const (
	MinQuantity = 1
	MaxQuantity = 8
)

// Sentinel errors for order operations.
var (
	ErrEmptyItems    = fmt.Errorf("items required")
	ErrOrderNotFound = fmt.Errorf("order not found")
	ErrForbidden     = fmt.Errorf("order belongs to another user")
)

// BookNotFoundError indicates a cart references a book that does not exist.
type BookNotFoundError struct {
	BookID int64
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.BookID)
}

// InvalidQuantityError indicates a line item quantity outside [1, 8].
type InvalidQuantityError struct {
	BookID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for book %d must be between %d and %d",
		e.Quantity, e.BookID, MinQuantity, MaxQuantity)
}

// Item is a single cart entry in an order request.
type Item struct {
	BookID   int64
	Quantity int
}

// OrderItem is a persisted order line. Price is the effective unit price
// frozen at order time; later price or discount changes never alter it.
type OrderItem struct {
	ID       int64
	OrderID  int64
	BookID   int64
	Quantity int
	Price    decimal.Decimal

	// Enrichment from the book table for response payloads; not stored on
	// the order_item row itself.
	Title      string
	CoverPhoto string
}

// Total returns quantity times the snapshot unit price.
func (i OrderItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed order. Orders are created once, atomically with their
// items, and are immutable afterwards.
type Order struct {
	ID        int64
	UserID    int64
	OrderDate time.Time
	Amount    decimal.Decimal
	Items     []OrderItem
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and all its items as one transaction.
	// Either everything commits or nothing does. On success the generated
	// order and item IDs are set on o.
	Create(ctx context.Context, o *Order) error

	// ListByUser returns all orders of a user with their items, most recent
	// first.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)

	// GetByID returns one order with its items, or ErrOrderNotFound.
	GetByID(ctx context.Context, orderID int64) (*Order, error)
}
