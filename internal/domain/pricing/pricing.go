// Package pricing derives the effective price of a book at a point in time,
// taking active discount windows into account.
package pricing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is a time-boxed price override for a single book. A nil EndDate
// means the discount stays active until removed.
type Discount struct {
	ID        int64
	BookID    int64
	StartDate time.Time
	EndDate   *time.Time
	Price     decimal.Decimal
}

// Repository looks up discounts. A discount is active on day D when
// start_date <= D <= end_date, both days inclusive, with a missing end date
// meaning open-ended; callers must pass D at day granularity. When several
// discounts are active for the same book at once, implementations must
// return the one with the lowest discount price.
type Repository interface {
	// ActiveForBook returns the winning active discount for the book at the
	// given date, or nil when none is active.
	ActiveForBook(ctx context.Context, bookID int64, at time.Time) (*Discount, error)
}

// Quote is the resolved price of a single book unit.
type Quote struct {
	ListPrice  decimal.Decimal
	FinalPrice decimal.Decimal

	// Discount fields are only meaningful when Discounted is true.
	Discounted      bool
	DiscountPrice   decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Compute derives a Quote from a list price and an optional active discount
// price. A nil discountPrice means no discount applies and the final price
// equals the list price.
//
// DiscountPercent is rounded to two decimal places. A non-positive list price
// cannot produce a meaningful percentage, so it is reported as zero instead
// of dividing by zero.
func Compute(listPrice decimal.Decimal, discountPrice *decimal.Decimal) Quote {
	q := Quote{
		ListPrice:  listPrice,
		FinalPrice: listPrice,
	}
	if discountPrice == nil {
		return q
	}

	q.Discounted = true
	q.DiscountPrice = *discountPrice
	q.FinalPrice = *discountPrice
	q.DiscountAmount = listPrice.Sub(*discountPrice)
	if listPrice.IsPositive() {
		q.DiscountPercent = q.DiscountAmount.Div(listPrice).Mul(hundred).Round(2)
	}
	return q
}

// Resolver resolves effective prices by looking up active discounts in a
// Repository.
type Resolver struct {
	discounts Repository
}

// NewResolver creates a Resolver backed by the given discount repository.
func NewResolver(discounts Repository) *Resolver {
	return &Resolver{discounts: discounts}
}

// ActiveDiscount returns the winning active discount for a book at the given
// date, or nil when none applies.
func (r *Resolver) ActiveDiscount(ctx context.Context, bookID int64, at time.Time) (*Discount, error) {
	d, err := r.discounts.ActiveForBook(ctx, bookID, at)
	if err != nil {
		return nil, errors.Wrapf(err, "lookup discount for book %d", bookID)
	}
	return d, nil
}

// Resolve returns the effective price quote for a book at the given date.
func (r *Resolver) Resolve(ctx context.Context, bookID int64, listPrice decimal.Decimal, at time.Time) (Quote, error) {
	d, err := r.discounts.ActiveForBook(ctx, bookID, at)
	if err != nil {
		return Quote{}, errors.Wrapf(err, "lookup discount for book %d", bookID)
	}
	if d == nil {
		return Compute(listPrice, nil), nil
	}
	return Compute(listPrice, &d.Price), nil
}
