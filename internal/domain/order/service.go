package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bookworm/backend/internal/domain/catalog"
	"github.com/bookworm/backend/internal/domain/pricing"
)

// Service encapsulates order placement and retrieval business logic.
//
// Order creation resolves each item's effective unit price on the wall-clock
// order day, unlike catalog reads which use the fixed storefront reference
// date. The clock is injectable for tests.
type Service struct {
	books  catalog.BookRepository
	prices *pricing.Resolver
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(books catalog.BookRepository, prices *pricing.Resolver, orders Repository) *Service {
	return &Service{
		books:  books,
		prices: prices,
		orders: orders,
		now:    time.Now,
	}
}

// WithClock overrides the order-time clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CreateOrder validates every cart item, snapshots each item's effective
// unit price on the order day, and persists the order with its items as
// one atomic write. Any validation failure aborts before anything is
// written.
func (s *Service) CreateOrder(ctx context.Context, userID int64, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}

	// Batch fetch all referenced books in a single query.
	fetched, err := s.books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get books")
	}
	bookByID := make(map[int64]catalog.Book, len(fetched))
	for _, b := range fetched {
		bookByID[b.ID] = b
	}

	// All items must pass validation before any pricing or persistence.
	for _, item := range items {
		if _, ok := bookByID[item.BookID]; !ok {
			return nil, &BookNotFoundError{BookID: item.BookID}
		}
		if item.Quantity < MinQuantity || item.Quantity > MaxQuantity {
			return nil, &InvalidQuantityError{BookID: item.BookID, Quantity: item.Quantity}
		}
	}

	orderDate := s.now()
	// Discount windows have day granularity. Pricing at the raw timestamp
	// would drop a discount for most of its final day, because an end date
	// compares as midnight. The stored order_date keeps the full timestamp.
	pricingDay := truncateToDay(orderDate)

	amount := decimal.Zero
	lines := make([]OrderItem, len(items))
	for i, item := range items {
		b := bookByID[item.BookID]

		q, err := s.prices.Resolve(ctx, b.ID, b.Price, pricingDay)
		if err != nil {
			return nil, err
		}

		lines[i] = OrderItem{
			BookID:     item.BookID,
			Quantity:   item.Quantity,
			Price:      q.FinalPrice,
			Title:      b.Title,
			CoverPhoto: b.CoverPhoto,
		}
		amount = amount.Add(lines[i].Total())
	}

	o := &Order{
		UserID:    userID,
		OrderDate: orderDate,
		Amount:    amount,
		Items:     lines,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// ListUserOrders returns all orders of a user, most recent first. Item
// totals derive from the stored snapshot prices; nothing is re-resolved.
func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// GetOrderDetail returns one order, enforcing that it belongs to userID.
// Returns ErrOrderNotFound for unknown IDs and ErrForbidden on an ownership
// mismatch.
func (s *Service) GetOrderDetail(ctx context.Context, orderID, userID int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}
