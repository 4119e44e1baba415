package repository

import (
	"context"

	"discount-service/internal/infra"
	"discount-service/internal/infra/db"
	"discount-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type UsageRepository struct{}

func NewUsageRepository() *UsageRepository {
	return &UsageRepository{}
}

func (r *UsageRepository) Insert(ctx context.Context, tx db.DBTX, rec shared.UsageRecord) (uuid.UUID, error) {
	query := `
		INSERT INTO discount_usages (id, discount_id, order_id, customer_id, discount_value, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query,
		uuid.New(),
		rec.DiscountID,
		rec.OrderID,
		rec.CustomerID,
		rec.DiscountValue,
		rec.AppliedAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("usage references a missing discount", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to insert usage record", err)
	}
	return id, nil
}

func (r *UsageRepository) CountByCustomer(ctx context.Context, tx db.DBTX, discountID, customerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM discount_usages
		WHERE discount_id = $1 AND customer_id = $2
	`

	var count int
	if err := tx.QueryRow(ctx, query, discountID, customerID).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count customer usages", err)
	}
	return count, nil
}
