package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestCompute_NoDiscount(t *testing.T) {
	q := Compute(d("25.00"), nil)

	assert.False(t, q.Discounted)
	assert.True(t, d("25.00").Equal(q.FinalPrice))
	assert.True(t, q.DiscountAmount.IsZero())
}

func TestCompute_WithDiscount(t *testing.T) {
	q := Compute(d("25.00"), dp("20.00"))

	require.True(t, q.Discounted)
	assert.True(t, d("20.00").Equal(q.FinalPrice))
	assert.True(t, d("20.00").Equal(q.DiscountPrice))
	assert.True(t, d("5.00").Equal(q.DiscountAmount))
	assert.True(t, d("20.00").Equal(q.DiscountPercent), "5/25 = 20%%, got %s", q.DiscountPercent)
}

func TestCompute_PercentRounding(t *testing.T) {
	// 3.33 off 9.99 is 33.333...%, rounded to two decimals.
	q := Compute(d("9.99"), dp("6.66"))

	require.True(t, q.Discounted)
	assert.True(t, d("33.33").Equal(q.DiscountPercent))
}

func TestCompute_ZeroListPrice(t *testing.T) {
	// A free book cannot express a discount as a percentage.
	q := Compute(d("0"), dp("0"))

	require.True(t, q.Discounted)
	assert.True(t, q.FinalPrice.IsZero())
	assert.True(t, q.DiscountPercent.IsZero())
}

type stubDiscountRepo struct {
	discount *Discount
	err      error
}

func (s *stubDiscountRepo) ActiveForBook(_ context.Context, _ int64, _ time.Time) (*Discount, error) {
	return s.discount, s.err
}

func TestResolver_Resolve(t *testing.T) {
	at := date(2022, 10, 8)

	t.Run("no discount", func(t *testing.T) {
		r := NewResolver(&stubDiscountRepo{})

		q, err := r.Resolve(context.Background(), 1, d("15.00"), at)
		require.NoError(t, err)
		assert.False(t, q.Discounted)
		assert.True(t, d("15.00").Equal(q.FinalPrice))
	})

	t.Run("active discount", func(t *testing.T) {
		r := NewResolver(&stubDiscountRepo{discount: &Discount{
			BookID:    1,
			Price:     d("9.99"),
			StartDate: date(2022, 10, 1),
		}})

		q, err := r.Resolve(context.Background(), 1, d("15.00"), at)
		require.NoError(t, err)
		require.True(t, q.Discounted)
		assert.True(t, d("9.99").Equal(q.FinalPrice))
	})
}
