//go:build unit || e2e

package builder

import (
	"time"

	domdiscount "discount-service/internal/domain/discount"
	reqdto "discount-service/internal/handler/dto/request"
	"discount-service/internal/usecase/commands"
	"discount-service/internal/usecase/queries"
	"discount-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type DiscountBuilder struct {
	ID               uuid.UUID
	Code             string
	Kind             string
	Value            float64
	MinPurchase      float64
	MaxDiscount      *float64
	ValidFrom        time.Time
	ValidTo          time.Time
	UsageLimit       *int
	PerCustomerLimit int
	Categories       []uuid.UUID
	Products         []uuid.UUID
	Status           string
	UsageCount       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewDiscountBuilder() *DiscountBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	limit := 100
	return &DiscountBuilder{
		ID:               uuid.New(),
		Code:             "SAVE10",
		Kind:             string(domdiscount.KindPercentage),
		Value:            10,
		MinPurchase:      500,
		ValidFrom:        now.Add(-time.Hour),
		ValidTo:          now.Add(24 * time.Hour),
		UsageLimit:       &limit,
		PerCustomerLimit: 1,
		Status:           string(domdiscount.StatusActive),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (b *DiscountBuilder) With(mutate func(*DiscountBuilder)) *DiscountBuilder {
	mutate(b)
	return b
}

func (b *DiscountBuilder) WithCode(code string) *DiscountBuilder {
	b.Code = code
	return b
}

func (b *DiscountBuilder) WithKind(kind string) *DiscountBuilder {
	b.Kind = kind
	return b
}

func (b *DiscountBuilder) WithValue(value float64) *DiscountBuilder {
	b.Value = value
	return b
}

func (b *DiscountBuilder) WithMaxDiscount(cap float64) *DiscountBuilder {
	b.MaxDiscount = &cap
	return b
}

func (b *DiscountBuilder) WithWindow(from, to time.Time) *DiscountBuilder {
	b.ValidFrom = from
	b.ValidTo = to
	return b
}

func (b *DiscountBuilder) WithUsageLimit(limit int) *DiscountBuilder {
	b.UsageLimit = &limit
	return b
}

func (b *DiscountBuilder) WithoutUsageLimit() *DiscountBuilder {
	b.UsageLimit = nil
	return b
}

func (b *DiscountBuilder) WithStatus(status string) *DiscountBuilder {
	b.Status = status
	return b
}

func (b *DiscountBuilder) BuildDomain() (*domdiscount.Discount, error) {
	return domdiscount.NewDiscount(
		b.ID,
		b.Code,
		domdiscount.Kind(b.Kind),
		b.Value,
		b.MinPurchase,
		b.MaxDiscount,
		b.ValidFrom,
		b.ValidTo,
		b.UsageLimit,
		b.PerCustomerLimit,
		domdiscount.NewApplicability(b.Categories, b.Products),
		domdiscount.Status(b.Status),
	)
}

func (b *DiscountBuilder) BuildSnapshot() *shared.DiscountSnapshot {
	return &shared.DiscountSnapshot{
		ID:               b.ID,
		Code:             b.Code,
		Kind:             b.Kind,
		Value:            b.Value,
		MinPurchase:      b.MinPurchase,
		MaxDiscount:      b.MaxDiscount,
		ValidFrom:        b.ValidFrom,
		ValidTo:          b.ValidTo,
		UsageLimit:       b.UsageLimit,
		PerCustomerLimit: b.PerCustomerLimit,
		Categories:       b.Categories,
		Products:         b.Products,
		Status:           b.Status,
		UsageCount:       b.UsageCount,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (b *DiscountBuilder) BuildCreateCommand() commands.CreateDiscountRequest {
	return commands.CreateDiscountRequest{
		Code:             b.Code,
		Kind:             b.Kind,
		Value:            b.Value,
		MinPurchase:      b.MinPurchase,
		MaxDiscount:      b.MaxDiscount,
		ValidFrom:        b.ValidFrom,
		ValidTo:          b.ValidTo,
		UsageLimit:       b.UsageLimit,
		PerCustomerLimit: b.PerCustomerLimit,
		Categories:       b.Categories,
		Products:         b.Products,
		Status:           b.Status,
	}
}

func (b *DiscountBuilder) BuildCreateRequestDTO() reqdto.CreateDiscountRequest {
	perCustomer := b.PerCustomerLimit
	return reqdto.CreateDiscountRequest{
		Code:             b.Code,
		Kind:             b.Kind,
		Value:            b.Value,
		MinPurchase:      b.MinPurchase,
		MaxDiscount:      b.MaxDiscount,
		ValidFrom:        b.ValidFrom,
		ValidTo:          b.ValidTo,
		UsageLimit:       b.UsageLimit,
		PerCustomerLimit: &perCustomer,
		Categories:       b.Categories,
		Products:         b.Products,
		Status:           b.Status,
	}
}

func (b *DiscountBuilder) BuildView() *queries.DiscountView {
	return &queries.DiscountView{
		ID:               b.ID,
		Code:             b.Code,
		Kind:             b.Kind,
		Value:            b.Value,
		MinPurchase:      b.MinPurchase,
		MaxDiscount:      b.MaxDiscount,
		ValidFrom:        b.ValidFrom,
		ValidTo:          b.ValidTo,
		UsageLimit:       b.UsageLimit,
		PerCustomerLimit: b.PerCustomerLimit,
		Categories:       b.Categories,
		Products:         b.Products,
		Status:           b.Status,
		UsageCount:       b.UsageCount,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
