package readstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"discount-service/internal/infra"
	"discount-service/internal/infra/db"
	"discount-service/internal/pkg/pgconv"
	"discount-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DiscountReadStore struct {
	db db.DBTX
}

func NewDiscountReadStore(dbtx db.DBTX) *DiscountReadStore {
	return &DiscountReadStore{db: dbtx}
}

func (r *DiscountReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.DiscountView, error) {
	query := `
		SELECT id, code, kind, value, min_purchase, max_discount,
		       valid_from, valid_to, usage_limit, per_customer_limit,
		       applicable_categories, applicable_products, status, usage_count,
		       created_at, updated_at
		FROM discounts
		WHERE id = $1
	`

	var view queries.DiscountView
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID,
		&view.Code,
		&view.Kind,
		&view.Value,
		&view.MinPurchase,
		&view.MaxDiscount,
		&view.ValidFrom,
		&view.ValidTo,
		&view.UsageLimit,
		&view.PerCustomerLimit,
		&view.Categories,
		&view.Products,
		&view.Status,
		&view.UsageCount,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find discount by ID", err)
	}
	return &view, nil
}

func (r *DiscountReadStore) ListFirstPage(ctx context.Context, filters queries.DiscountFilters, limit int32) ([]*queries.DiscountListItem, error) {
	where, args := buildListFilters(filters, nil)
	query := fmt.Sprintf(`
		SELECT id, code, kind, value, status, valid_from, valid_to,
		       usage_count, usage_limit, created_at
		FROM discounts
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, where, len(args)+1)
	args = append(args, limit)

	return r.listDiscounts(ctx, query, args)
}

func (r *DiscountReadStore) ListKeyset(ctx context.Context, filters queries.DiscountFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.DiscountListItem, error) {
	where, args := buildListFilters(filters, []any{lastCreatedAt, lastID})
	query := fmt.Sprintf(`
		SELECT id, code, kind, value, status, valid_from, valid_to,
		       usage_count, usage_limit, created_at
		FROM discounts
		%s AND (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, where, len(args)+1)
	args = append(args, limit)

	return r.listDiscounts(ctx, query, args)
}

func (r *DiscountReadStore) listDiscounts(ctx context.Context, query string, args []any) ([]*queries.DiscountListItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list discounts", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.DiscountListItem, error) {
		var item queries.DiscountListItem
		err := row.Scan(
			&item.ID,
			&item.Code,
			&item.Kind,
			&item.Value,
			&item.Status,
			&item.ValidFrom,
			&item.ValidTo,
			&item.UsageCount,
			&item.UsageLimit,
			&item.CreatedAt,
		)
		return &item, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan discount list", err)
	}
	return items, nil
}

func (r *DiscountReadStore) UsagesFirstPage(ctx context.Context, discountID uuid.UUID, limit int32) ([]*queries.UsageView, error) {
	query := `
		SELECT id, discount_id, order_id, customer_id, discount_value, applied_at
		FROM discount_usages
		WHERE discount_id = $1
		ORDER BY applied_at DESC, id DESC
		LIMIT $2
	`
	return r.listUsages(ctx, query, []any{discountID, limit})
}

func (r *DiscountReadStore) UsagesKeyset(ctx context.Context, discountID uuid.UUID, lastAppliedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.UsageView, error) {
	query := `
		SELECT id, discount_id, order_id, customer_id, discount_value, applied_at
		FROM discount_usages
		WHERE discount_id = $1 AND (applied_at, id) < ($2, $3)
		ORDER BY applied_at DESC, id DESC
		LIMIT $4
	`
	return r.listUsages(ctx, query, []any{discountID, lastAppliedAt, lastID, limit})
}

func (r *DiscountReadStore) listUsages(ctx context.Context, query string, args []any) ([]*queries.UsageView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list usage records", err)
	}
	defer rows.Close()

	usages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.UsageView, error) {
		var usage queries.UsageView
		err := row.Scan(
			&usage.ID,
			&usage.DiscountID,
			&usage.OrderID,
			&usage.CustomerID,
			&usage.DiscountValue,
			&usage.AppliedAt,
		)
		return &usage, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan usage records", err)
	}
	return usages, nil
}

// buildListFilters renders a WHERE clause whose placeholders continue
// after any fixed leading args (the keyset bounds).
func buildListFilters(filters queries.DiscountFilters, fixed []any) (string, []any) {
	args := fixed
	var conds []string

	appendCond := func(column string, value string) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filters.Status != nil {
		appendCond("status", *filters.Status)
	}
	if filters.Kind != nil {
		appendCond("kind", *filters.Kind)
	}
	if filters.Code != nil {
		appendCond("code", *filters.Code)
	}

	if len(conds) == 0 {
		return "WHERE TRUE", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
