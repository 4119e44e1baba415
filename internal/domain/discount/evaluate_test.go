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

func buildDiscount(t *testing.T, b *builder.DiscountBuilder) *discount.Discount {
	t.Helper()
	d, err := b.BuildDomain()
	require.NoError(t, err)
	return d
}

func TestEvaluate(t *testing.T) {
	now := time.Now().UTC()
	customerID := uuid.New()

	order := func(subtotal float64) discount.OrderContext {
		return discount.OrderContext{Subtotal: subtotal, CustomerID: customerID}
	}

	t.Run("eligible percentage discount computes amount", func(t *testing.T) {
		// 10% off orders of 500+, capped usage, one use per customer
		d := buildDiscount(t, builder.NewDiscountBuilder())

		result := discount.Evaluate(d, order(1000), 0, now)

		assert.True(t, result.Eligible)
		assert.Empty(t, string(result.Reason))
		assert.Equal(t, float64(100), result.Amount)
		assert.False(t, result.FreeShipping)
		assert.Equal(t, "SAVE10", result.Code)
	})

	t.Run("inactive discount rejected before any other check", func(t *testing.T) {
		// Also below min purchase; the status check must win.
		d := buildDiscount(t, builder.NewDiscountBuilder().WithStatus("inactive"))

		result := discount.Evaluate(d, order(100), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonInactive, result.Reason)
	})

	t.Run("not yet active", func(t *testing.T) {
		d := buildDiscount(t, builder.NewDiscountBuilder().
			WithWindow(now.Add(time.Hour), now.Add(48*time.Hour)))

		result := discount.Evaluate(d, order(1000), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonNotYetActive, result.Reason)
	})

	t.Run("expired", func(t *testing.T) {
		d := buildDiscount(t, builder.NewDiscountBuilder().
			WithWindow(now.Add(-48*time.Hour), now.Add(-time.Hour)))

		result := discount.Evaluate(d, order(1000), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonExpired, result.Reason)
	})

	t.Run("eligible at exact window end", func(t *testing.T) {
		end := now.Add(time.Hour)
		d := buildDiscount(t, builder.NewDiscountBuilder().WithWindow(now.Add(-time.Hour), end))

		result := discount.Evaluate(d, order(1000), 0, end)

		assert.True(t, result.Eligible)
	})

	t.Run("below minimum purchase reports shortfall", func(t *testing.T) {
		d := buildDiscount(t, builder.NewDiscountBuilder())

		result := discount.Evaluate(d, order(300), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonBelowMinPurchase, result.Reason)
		assert.Equal(t, float64(200), result.Shortfall)
		assert.Equal(t, float64(500), result.MinPurchase)
	})

	t.Run("subtotal exactly at minimum qualifies", func(t *testing.T) {
		d := buildDiscount(t, builder.NewDiscountBuilder())

		result := discount.Evaluate(d, order(500), 0, now)

		assert.True(t, result.Eligible)
		assert.Equal(t, float64(50), result.Amount)
	})

	t.Run("usage limit exhausted", func(t *testing.T) {
		b := builder.NewDiscountBuilder().WithUsageLimit(2)
		b.UsageCount = 2
		snap := b.BuildSnapshot()
		d := snap.ToDomain()

		result := discount.Evaluate(d, order(1000), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonUsageLimitReached, result.Reason)
		assert.Equal(t, 2, result.UsageCount)
		require.NotNil(t, result.UsageLimit)
		assert.Equal(t, 2, *result.UsageLimit)
	})

	t.Run("nil usage limit means unlimited", func(t *testing.T) {
		b := builder.NewDiscountBuilder().WithoutUsageLimit()
		b.UsageCount = 100000
		d := b.BuildSnapshot().ToDomain()

		result := discount.Evaluate(d, order(1000), 0, now)

		assert.True(t, result.Eligible)
	})

	t.Run("per-customer limit reached", func(t *testing.T) {
		d := buildDiscount(t, builder.NewDiscountBuilder())

		result := discount.Evaluate(d, order(1000), 1, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonCustomerLimitReached, result.Reason)
		assert.Equal(t, 1, result.CustomerUses)
		assert.Equal(t, 1, result.PerCustomerLimit)
	})

	t.Run("not found result", func(t *testing.T) {
		result := discount.NotFoundResult("NOPE99")

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonCodeNotFound, result.Reason)
		assert.Equal(t, "NOPE99", result.Code)
	})
}

func TestEvaluateApplicability(t *testing.T) {
	now := time.Now().UTC()
	customerID := uuid.New()
	electronics := uuid.New()
	books := uuid.New()
	laptop := uuid.New()
	novel := uuid.New()

	cartWith := func(items ...discount.LineItem) discount.OrderContext {
		return discount.OrderContext{Subtotal: 1000, CustomerID: customerID, Items: items}
	}

	t.Run("unrestricted discount matches any cart", func(t *testing.T) {
		d := buildDiscount(t, builder.NewDiscountBuilder())

		result := discount.Evaluate(d, cartWith(), 0, now)

		assert.True(t, result.Eligible)
	})

	t.Run("category match qualifies", func(t *testing.T) {
		b := builder.NewDiscountBuilder()
		b.Categories = []uuid.UUID{electronics}
		d := buildDiscount(t, b)

		result := discount.Evaluate(d, cartWith(
			discount.LineItem{ProductID: laptop, CategoryID: electronics},
		), 0, now)

		assert.True(t, result.Eligible)
	})

	t.Run("product match qualifies even out of category", func(t *testing.T) {
		// Applicability is an OR across categories and products.
		b := builder.NewDiscountBuilder()
		b.Categories = []uuid.UUID{electronics}
		b.Products = []uuid.UUID{novel}
		d := buildDiscount(t, b)

		result := discount.Evaluate(d, cartWith(
			discount.LineItem{ProductID: novel, CategoryID: books},
		), 0, now)

		assert.True(t, result.Eligible)
	})

	t.Run("no matching item rejects", func(t *testing.T) {
		b := builder.NewDiscountBuilder()
		b.Categories = []uuid.UUID{electronics}
		d := buildDiscount(t, b)

		result := discount.Evaluate(d, cartWith(
			discount.LineItem{ProductID: novel, CategoryID: books},
		), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonNotApplicableToCart, result.Reason)
	})

	t.Run("restricted discount with empty cart rejects", func(t *testing.T) {
		b := builder.NewDiscountBuilder()
		b.Products = []uuid.UUID{laptop}
		d := buildDiscount(t, b)

		result := discount.Evaluate(d, cartWith(), 0, now)

		assert.False(t, result.Eligible)
		assert.Equal(t, discount.ReasonNotApplicableToCart, result.Reason)
	})
}

func TestGenerateCode(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("rule prefix is sanitized and uppercased", func(t *testing.T) {
		code := discount.GenerateCode("summer sale!", nil, now)
		assert.Regexp(t, `^SUMMERSALE-[0-9A-Z]+$`, code.String())
	})

	t.Run("category fragment included when present", func(t *testing.T) {
		category := uuid.MustParse("abcdef12-0000-0000-0000-000000000000")
		code := discount.GenerateCode("flash", &category, now)
		assert.Regexp(t, `^FLASH-ABCD-[0-9A-Z]+$`, code.String())
	})

	t.Run("empty rule falls back to AUTO", func(t *testing.T) {
		code := discount.GenerateCode("!!!", nil, now)
		assert.Regexp(t, `^AUTO-[0-9A-Z]+$`, code.String())
	})

	t.Run("generated codes pass code validation", func(t *testing.T) {
		code := discount.GenerateCode("welcome", nil, now)
		_, err := discount.NewCode(code.String())
		assert.NoError(t, err)
	})
}
