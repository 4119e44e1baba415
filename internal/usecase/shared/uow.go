package shared

import (
	"context"
	"time"

	"discount-service/internal/domain/discount"
	"discount-service/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Discounts() DiscountRepository
	Usages() UsageRepository
	Reads() CommandReads
	DB() db.DBTX
}

// CommandReads are the lookups command validation needs: discount state,
// code conflicts, per-customer usage counts and catalog existence checks.
type CommandReads interface {
	DiscountByID(ctx context.Context, id uuid.UUID) (*DiscountSnapshot, error)
	DiscountByCode(ctx context.Context, code string) (*DiscountSnapshot, error)
	// ExistingCodes returns the subset of codes already taken by a live
	// discount, regardless of that discount's status.
	ExistingCodes(ctx context.Context, codes []string) ([]string, error)
	CustomerUsageCount(ctx context.Context, discountID, customerID uuid.UUID) (int, error)
	MissingCategories(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// DiscountSnapshot is the flat read model commands validate against.
type DiscountSnapshot struct {
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

// ToDomain rebuilds the aggregate from the snapshot.
func (s *DiscountSnapshot) ToDomain() *discount.Discount {
	return discount.Reconstruct(
		s.ID,
		discount.Code(s.Code),
		discount.Kind(s.Kind),
		s.Value,
		s.MinPurchase,
		s.MaxDiscount,
		s.ValidFrom,
		s.ValidTo,
		s.UsageLimit,
		s.PerCustomerLimit,
		discount.NewApplicability(s.Categories, s.Products),
		discount.Status(s.Status),
		s.UsageCount,
		s.CreatedAt,
		s.UpdatedAt,
	)
}

type UsageRecord struct {
	DiscountID    uuid.UUID
	OrderID       uuid.UUID
	CustomerID    uuid.UUID
	DiscountValue float64
	AppliedAt     time.Time
}

type DiscountRepository interface {
	Create(ctx context.Context, tx db.DBTX, d *discount.Discount) (uuid.UUID, error)
	// Update rewrites all mutable fields from the aggregate; usage_count and
	// created_at are owned by the redemption path and the store respectively.
	Update(ctx context.Context, tx db.DBTX, d *discount.Discount) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	SetStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status discount.Status) error
	// LockByID loads the discount row FOR UPDATE, serializing concurrent
	// redemptions of the same discount.
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*DiscountSnapshot, error)
	// IncrementUsage bumps usage_count only while below usage_limit and
	// reports whether a row was updated.
	IncrementUsage(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
}

type UsageRepository interface {
	Insert(ctx context.Context, tx db.DBTX, rec UsageRecord) (uuid.UUID, error)
	CountByCustomer(ctx context.Context, tx db.DBTX, discountID, customerID uuid.UUID) (int, error)
}

// AuditEvent describes a side effect worth recording. Sinks are
// fire-and-forget: recording failures never abort the primary operation.
type AuditEvent struct {
	Action     string
	DiscountID uuid.UUID
	Code       string
	Detail     map[string]any
}

type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}
