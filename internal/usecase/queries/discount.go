package queries

import (
	"context"
	"time"

	"discount-service/internal/infra"
	"discount-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrDiscountNotFound = errs.New("discount not found")
	ErrInvalidCursor    = errs.New("invalid pagination cursor")
)

// Read models (DTO for read side)
type DiscountView struct {
	ID               uuid.UUID   `json:"id"`
	Code             string      `json:"code"`
	Kind             string      `json:"kind"`
	Value            float64     `json:"value"`
	MinPurchase      float64     `json:"min_purchase"`
	MaxDiscount      *float64    `json:"max_discount,omitempty"`
	ValidFrom        time.Time   `json:"valid_from"`
	ValidTo          time.Time   `json:"valid_to"`
	UsageLimit       *int        `json:"usage_limit,omitempty"`
	PerCustomerLimit int         `json:"per_customer_limit"`
	Categories       []uuid.UUID `json:"applicable_categories"`
	Products         []uuid.UUID `json:"applicable_products"`
	Status           string      `json:"status"`
	UsageCount       int         `json:"usage_count"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type DiscountListItem struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Kind       string    `json:"kind"`
	Value      float64   `json:"value"`
	Status     string    `json:"status"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidTo    time.Time `json:"valid_to"`
	UsageCount int       `json:"usage_count"`
	UsageLimit *int      `json:"usage_limit,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type UsageView struct {
	ID            uuid.UUID `json:"id"`
	DiscountID    uuid.UUID `json:"discount_id"`
	OrderID       uuid.UUID `json:"order_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	DiscountValue float64   `json:"discount_value"`
	AppliedAt     time.Time `json:"applied_at"`
}

// DiscountFilters narrows the list; nil fields match everything.
type DiscountFilters struct {
	Status *string
	Kind   *string
	Code   *string
}

type DiscountQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*DiscountView, error)
	List(ctx context.Context, filters DiscountFilters, after *Cursor, limit int) ([]*DiscountListItem, *Cursor, error)
	UsageHistory(ctx context.Context, discountID uuid.UUID, after *Cursor, limit int) ([]*UsageView, *Cursor, error)
}

type DiscountReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DiscountView, error)
	ListFirstPage(ctx context.Context, filters DiscountFilters, limit int32) ([]*DiscountListItem, error)
	ListKeyset(ctx context.Context, filters DiscountFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*DiscountListItem, error)
	UsagesFirstPage(ctx context.Context, discountID uuid.UUID, limit int32) ([]*UsageView, error)
	UsagesKeyset(ctx context.Context, discountID uuid.UUID, lastAppliedAt time.Time, lastID uuid.UUID, limit int32) ([]*UsageView, error)
}

type discountQueriesImpl struct {
	readStore DiscountReadStore
}

func NewDiscountQueries(readStore DiscountReadStore) DiscountQueries {
	return &discountQueriesImpl{
		readStore: readStore,
	}
}

func (q *discountQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*DiscountView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *discountQueriesImpl) List(ctx context.Context, filters DiscountFilters, after *Cursor, limit int) ([]*DiscountListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		items []*DiscountListItem
		err   error
	)
	if after == nil || after.After == "" {
		items, err = q.readStore.ListFirstPage(ctx, filters, int32(limit))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(after.After)
		if derr != nil {
			return nil, nil, errs.Mark(derr, ErrInvalidCursor)
		}
		items, err = q.readStore.ListKeyset(ctx, filters, lastCreatedAt, lastID, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(items) == limit {
		last := items[len(items)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return items, next, nil
}

func (q *discountQueriesImpl) UsageHistory(ctx context.Context, discountID uuid.UUID, after *Cursor, limit int) ([]*UsageView, *Cursor, error) {
	// A missing discount is surfaced as not found rather than an empty page.
	if _, err := q.readStore.FindByID(ctx, discountID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, ErrDiscountNotFound
		}
		return nil, nil, err
	}

	limit = ValidateLimit(limit)

	var (
		usages []*UsageView
		err    error
	)
	if after == nil || after.After == "" {
		usages, err = q.readStore.UsagesFirstPage(ctx, discountID, int32(limit))
	} else {
		lastAppliedAt, lastID, derr := DecodeAfterCursor(after.After)
		if derr != nil {
			return nil, nil, errs.Mark(derr, ErrInvalidCursor)
		}
		usages, err = q.readStore.UsagesKeyset(ctx, discountID, lastAppliedAt, lastID, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(usages) == limit {
		last := usages[len(usages)-1]
		next = &Cursor{After: EncodeAfterCursor(last.AppliedAt, last.ID)}
	}
	return usages, next, nil
}
