//go:build unit

package discount_test

import (
	"testing"
	"time"

	"discount-service/internal/domain/discount"
	"discount-service/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.DiscountBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewDiscountBuilder()
			if tc.mutate != nil {
				tc.mutate(b)
			}
			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
			} else {
				require.NoError(t, err)
				require.NotNil(t, actual)
			}
		})
	}
}

func TestDiscount(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewDiscountBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "SAVE10", actual.Code().String())
		assert.Equal(t, discount.KindPercentage, actual.Kind())
		assert.Equal(t, float64(10), actual.Value())
		assert.Equal(t, discount.StatusActive, actual.Status())
		assert.Equal(t, 0, actual.UsageCount())
	})

	t.Run("code validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "minimum length code",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode("AB1") },
			},
			{
				name:   "maximum length code",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode(string(make50('A'))) },
			},
			{
				name:   "too short code",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode("AB") },
				errIs:  discount.ErrInvalidCode,
			},
			{
				name:   "too long code",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode(string(make50('A')) + "X") },
				errIs:  discount.ErrInvalidCode,
			},
			{
				name:   "hyphen and underscore allowed",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode("SUMMER_2025-A") },
			},
			{
				name:   "whitespace is trimmed",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode("  SAVE10  ") },
			},
			{
				name:   "inner space rejected",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode("SAVE 10") },
				errIs:  discount.ErrInvalidCode,
			},
			{
				name:   "special characters rejected",
				mutate: func(b *builder.DiscountBuilder) { b.WithCode("SAVE10%") },
				errIs:  discount.ErrInvalidCode,
			},
		})
	})

	t.Run("kind and status validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "fixed amount kind",
				mutate: func(b *builder.DiscountBuilder) { b.WithKind("fixed_amount") },
			},
			{
				name:   "free shipping kind",
				mutate: func(b *builder.DiscountBuilder) { b.WithKind("free_shipping") },
			},
			{
				name:   "unknown kind",
				mutate: func(b *builder.DiscountBuilder) { b.WithKind("bogo") },
				errIs:  discount.ErrInvalidKind,
			},
			{
				name:   "inactive status",
				mutate: func(b *builder.DiscountBuilder) { b.WithStatus("inactive") },
			},
			{
				name:   "unknown status",
				mutate: func(b *builder.DiscountBuilder) { b.WithStatus("archived") },
				errIs:  discount.ErrInvalidStatus,
			},
		})
	})

	t.Run("numeric validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "zero value allowed",
				mutate: func(b *builder.DiscountBuilder) { b.WithValue(0) },
			},
			{
				name:   "negative value",
				mutate: func(b *builder.DiscountBuilder) { b.WithValue(-1) },
				errIs:  discount.ErrNegativeValue,
			},
			{
				name:   "negative min purchase",
				mutate: func(b *builder.DiscountBuilder) { b.MinPurchase = -0.01 },
				errIs:  discount.ErrNegativeMinPurchase,
			},
			{
				name: "negative max discount",
				mutate: func(b *builder.DiscountBuilder) {
					neg := -5.0
					b.MaxDiscount = &neg
				},
				errIs: discount.ErrNegativeMaxDiscount,
			},
			{
				name: "zero usage limit",
				mutate: func(b *builder.DiscountBuilder) {
					zero := 0
					b.UsageLimit = &zero
				},
				errIs: discount.ErrInvalidUsageLimit,
			},
			{
				name:   "zero per-customer limit",
				mutate: func(b *builder.DiscountBuilder) { b.PerCustomerLimit = 0 },
				errIs:  discount.ErrInvalidPerCustomerLimit,
			},
		})
	})

	t.Run("window validation", func(t *testing.T) {
		now := time.Now()
		runCases(t, []testCase{
			{
				name:   "start equal to end",
				mutate: func(b *builder.DiscountBuilder) { b.WithWindow(now, now) },
				errIs:  discount.ErrInvalidWindow,
			},
			{
				name:   "start after end",
				mutate: func(b *builder.DiscountBuilder) { b.WithWindow(now.Add(time.Hour), now) },
				errIs:  discount.ErrInvalidWindow,
			},
		})
	})
}

func TestDiscountComputeAmount(t *testing.T) {
	mustBuild := func(t *testing.T, b *builder.DiscountBuilder) *discount.Discount {
		t.Helper()
		d, err := b.BuildDomain()
		require.NoError(t, err)
		return d
	}

	t.Run("percentage of subtotal", func(t *testing.T) {
		d := mustBuild(t, builder.NewDiscountBuilder().WithValue(10))
		amount, freeShipping := d.ComputeAmount(1000)
		assert.Equal(t, float64(100), amount)
		assert.False(t, freeShipping)
	})

	t.Run("percentage capped at max discount", func(t *testing.T) {
		d := mustBuild(t, builder.NewDiscountBuilder().WithValue(50).WithMaxDiscount(200))
		amount, _ := d.ComputeAmount(1000)
		assert.Equal(t, float64(200), amount)
	})

	t.Run("percentage exactly at cap boundary", func(t *testing.T) {
		d := mustBuild(t, builder.NewDiscountBuilder().WithValue(20).WithMaxDiscount(200))
		amount, _ := d.ComputeAmount(1000)
		assert.Equal(t, float64(200), amount)
	})

	t.Run("fixed amount below subtotal", func(t *testing.T) {
		d := mustBuild(t, builder.NewDiscountBuilder().WithKind("fixed_amount").WithValue(50))
		amount, _ := d.ComputeAmount(1000)
		assert.Equal(t, float64(50), amount)
	})

	t.Run("fixed amount clamped to subtotal", func(t *testing.T) {
		d := mustBuild(t, builder.NewDiscountBuilder().WithKind("fixed_amount").WithValue(500))
		amount, _ := d.ComputeAmount(300)
		assert.Equal(t, float64(300), amount)
	})

	t.Run("free shipping yields zero amount", func(t *testing.T) {
		d := mustBuild(t, builder.NewDiscountBuilder().WithKind("free_shipping").WithValue(0))
		amount, freeShipping := d.ComputeAmount(1000)
		assert.Equal(t, float64(0), amount)
		assert.True(t, freeShipping)
	})
}

func TestDiscountWindow(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	d, err := builder.NewDiscountBuilder().WithWindow(from, to).BuildDomain()
	require.NoError(t, err)

	assert.False(t, d.InWindowAt(from.Add(-time.Second)))
	assert.True(t, d.InWindowAt(from))
	assert.True(t, d.InWindowAt(from.Add(12*time.Hour)))
	// End bound is inclusive
	assert.True(t, d.InWindowAt(to))
	assert.False(t, d.InWindowAt(to.Add(time.Second)))
}

func make50(c byte) []byte {
	s := make([]byte, 50)
	for i := range s {
		s[i] = c
	}
	return s
}
