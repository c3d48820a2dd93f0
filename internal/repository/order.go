package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookworm/backend/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, order_date, order_amount)
	VALUES ($1, $2, $3) RETURNING id`

	insertOrderItemSQL = `INSERT INTO order_item (order_id, book_id, quantity, price)
	VALUES ($1, $2, $3, $4) RETURNING id`

	listOrdersByUserSQL = `SELECT id, user_id, order_date, order_amount
	FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id DESC`

	getOrderSQL = `SELECT id, user_id, order_date, order_amount
	FROM orders WHERE id = $1`

	listOrderItemsSQL = `SELECT oi.id, oi.order_id, oi.book_id, oi.quantity, oi.price,
	       b.book_title, COALESCE(b.book_cover_photo, '')
	FROM order_item oi
	JOIN book b ON b.id = oi.book_id
	WHERE oi.order_id = ANY($1)
	ORDER BY oi.order_id, oi.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and all its items in one transaction. The
// generated IDs are written back to o on commit.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, insertOrderSQL, o.UserID, o.OrderDate, o.Amount).Scan(&o.ID); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if err := tx.QueryRow(ctx, insertOrderItemSQL,
			o.ID, item.BookID, item.Quantity, item.Price,
		).Scan(&item.ID); err != nil {
			return fmt.Errorf("inserting order item for book %d: %w", item.BookID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

// ListByUser returns all orders of a user with their items, most recent
// first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		o := index[item.OrderID]
		o.Items = append(o.Items, item)
	}
	return orders, nil
}

// GetByID returns one order with its items, or order.ErrOrderNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, orderID int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}

	o.Items, err = r.listItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderIDs []int64) ([]order.OrderItem, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.OrderItem, error) {
		var item order.OrderItem
		err := row.Scan(
			&item.ID, &item.OrderID, &item.BookID, &item.Quantity, &item.Price,
			&item.Title, &item.CoverPhoto,
		)
		return item, err
	})
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.Amount)
	return o, err
}
