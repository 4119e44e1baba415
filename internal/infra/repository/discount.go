package repository

import (
	"context"
	"errors"

	"discount-service/internal/domain/discount"
	"discount-service/internal/infra"
	"discount-service/internal/infra/db"
	"discount-service/internal/pkg/pgconv"
	"discount-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

const discountColumns = `
	id,
	code,
	kind,
	value,
	min_purchase,
	max_discount,
	valid_from,
	valid_to,
	usage_limit,
	per_customer_limit,
	applicable_categories,
	applicable_products,
	status,
	usage_count,
	created_at,
	updated_at
`

type DiscountRepository struct{}

func NewDiscountRepository() *DiscountRepository {
	return &DiscountRepository{}
}

func (r *DiscountRepository) Create(ctx context.Context, tx db.DBTX, d *discount.Discount) (uuid.UUID, error) {
	query := `
		INSERT INTO discounts (
			id, code, kind, value, min_purchase, max_discount,
			valid_from, valid_to, usage_limit, per_customer_limit,
			applicable_categories, applicable_products, status, usage_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0)
		RETURNING id
	`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query,
		d.ID(),
		d.Code().String(),
		string(d.Kind()),
		d.Value(),
		d.MinPurchase(),
		d.MaxDiscount(),
		d.ValidFrom(),
		d.ValidTo(),
		d.UsageLimit(),
		d.PerCustomerLimit(),
		uuidSlice(d.Applicability().Categories()),
		uuidSlice(d.Applicability().Products()),
		string(d.Status()),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("discount code already exists", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create discount", err)
	}
	return id, nil
}

func (r *DiscountRepository) Update(ctx context.Context, tx db.DBTX, d *discount.Discount) error {
	query := `
		UPDATE discounts SET
			code = $2,
			kind = $3,
			value = $4,
			min_purchase = $5,
			max_discount = $6,
			valid_from = $7,
			valid_to = $8,
			usage_limit = $9,
			per_customer_limit = $10,
			applicable_categories = $11,
			applicable_products = $12,
			status = $13,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		d.ID(),
		d.Code().String(),
		string(d.Kind()),
		d.Value(),
		d.MinPurchase(),
		d.MaxDiscount(),
		d.ValidFrom(),
		d.ValidTo(),
		d.UsageLimit(),
		d.PerCustomerLimit(),
		uuidSlice(d.Applicability().Categories()),
		uuidSlice(d.Applicability().Products()),
		string(d.Status()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("discount code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to update discount", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("discount not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *DiscountRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete discount", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("discount not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *DiscountRepository) SetStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status discount.Status) error {
	tag, err := tx.Exec(ctx,
		`UPDATE discounts SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return infra.WrapRepoErr("failed to set discount status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("discount not found", nil, infra.KindNotFound)
	}
	return nil
}

// LockByID takes a row lock so concurrent redemptions of the same discount
// serialize behind this transaction.
func (r *DiscountRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.DiscountSnapshot, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE id = $1 FOR UPDATE`
	snap, err := scanDiscount(tx.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock discount", err)
	}
	return snap, nil
}

// IncrementUsage is the conditional counter bump: no row is updated once
// usage_count has reached usage_limit.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	query := `
		UPDATE discounts
		SET usage_count = usage_count + 1, updated_at = now()
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)
	`
	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment usage count", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DiscountRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.DiscountSnapshot, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE id = $1`
	snap, err := scanDiscount(tx.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find discount by ID", err)
	}
	return snap, nil
}

// FindByCode matches exactly: codes are case-sensitive.
func (r *DiscountRepository) FindByCode(ctx context.Context, tx db.DBTX, code string) (*shared.DiscountSnapshot, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE code = $1`
	snap, err := scanDiscount(tx.QueryRow(ctx, query, code))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find discount by code", err)
	}
	return snap, nil
}

func (r *DiscountRepository) ExistingCodes(ctx context.Context, tx db.DBTX, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	rows, err := tx.Query(ctx, `SELECT code FROM discounts WHERE code = ANY($1)`, codes)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to check existing codes", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, infra.WrapRepoErr("failed to scan discount code", err)
		}
		existing = append(existing, code)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read discount codes", err)
	}
	return existing, nil
}

func scanDiscount(row pgx.Row) (*shared.DiscountSnapshot, error) {
	var snap shared.DiscountSnapshot
	err := row.Scan(
		&snap.ID,
		&snap.Code,
		&snap.Kind,
		&snap.Value,
		&snap.MinPurchase,
		&snap.MaxDiscount,
		&snap.ValidFrom,
		&snap.ValidTo,
		&snap.UsageLimit,
		&snap.PerCustomerLimit,
		&snap.Categories,
		&snap.Products,
		&snap.Status,
		&snap.UsageCount,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// uuidSlice normalizes nil to an empty array so the column is never NULL.
func uuidSlice(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeForeignKeyViolation
}
