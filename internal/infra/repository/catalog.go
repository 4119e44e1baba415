package repository

import (
	"context"

	"discount-service/internal/infra"
	"discount-service/internal/infra/db"

	"github.com/google/uuid"
)

// CatalogRepository answers existence checks against the category and
// product tables referenced by discount applicability.
type CatalogRepository struct{}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) MissingCategories(ctx context.Context, tx db.DBTX, ids []uuid.UUID) ([]uuid.UUID, error) {
	return r.missing(ctx, tx, `SELECT id FROM categories WHERE id = ANY($1)`, ids, "categories")
}

func (r *CatalogRepository) MissingProducts(ctx context.Context, tx db.DBTX, ids []uuid.UUID) ([]uuid.UUID, error) {
	return r.missing(ctx, tx, `SELECT id FROM products WHERE id = ANY($1)`, ids, "products")
}

func (r *CatalogRepository) missing(ctx context.Context, tx db.DBTX, query string, ids []uuid.UUID, table string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to look up "+table, err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]struct{}, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan "+table+" id", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read "+table, err)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
