package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"discount-service/internal/domain/discount"
	"discount-service/internal/infra"
	"discount-service/internal/metrics"
	"discount-service/internal/pkg/clock"
	"discount-service/internal/pkg/errs"
	"discount-service/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrDiscountNotFound        = errs.New("discount not found")
	ErrDuplicateCode           = errs.New("discount code already exists")
	ErrInvalidReference        = errs.New("invalid category or product reference")
	ErrValidationFailed        = errs.New("discount validation failed")
	ErrDiscountInUse           = errs.New("discount has been redeemed and cannot be deleted")
	ErrBatchDuplicateCode      = errs.New("duplicate codes within batch")
	ErrDiscountInactive        = errs.New("discount is inactive")
	ErrUsageLimitReached       = errs.New("discount usage limit reached")
	ErrCustomerLimitReached    = errs.New("per-customer redemption limit reached")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// ReferenceError lists the applicability identifiers that did not resolve,
// so the caller can tell the admin exactly which ones to fix.
type ReferenceError struct {
	MissingCategories []uuid.UUID
	MissingProducts   []uuid.UUID
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unresolved references: %d categories, %d products",
		len(e.MissingCategories), len(e.MissingProducts))
}

// InUseError is the deletion rejection; it carries the numbers the caller
// needs to offer "deactivate instead".
type InUseError struct {
	Code       string
	UsageCount int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("discount %s has %d redemptions", e.Code, e.UsageCount)
}

// BatchDuplicateError rejects an entire bulk request whose items collide
// with each other.
type BatchDuplicateError struct {
	Codes []string
}

func (e *BatchDuplicateError) Error() string {
	return "duplicate codes within batch: " + strings.Join(e.Codes, ", ")
}

type CreateDiscountRequest struct {
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
}

// UpdateDiscountRequest is a partial patch: nil fields are left unchanged.
// Lowering usage_limit below the current usage_count is permitted and simply
// blocks all future redemptions.
type UpdateDiscountRequest struct {
	Code             *string
	Kind             *string
	Value            *float64
	MinPurchase      *float64
	MaxDiscount      *float64
	ValidFrom        *time.Time
	ValidTo          *time.Time
	UsageLimit       *int
	PerCustomerLimit *int
	Categories       *[]uuid.UUID
	Products         *[]uuid.UUID
	Status           *string
}

type RedeemRequest struct {
	DiscountID    uuid.UUID
	OrderID       uuid.UUID
	CustomerID    uuid.UUID
	AppliedAmount float64
}

type AutoGenerateRequest struct {
	Rule             string
	Category         *uuid.UUID
	Kind             string
	Value            float64
	MinPurchase      float64
	MaxDiscount      *float64
	ValidFrom        time.Time
	ValidTo          time.Time
	UsageLimit       *int
	PerCustomerLimit int
}

type BulkItemResult struct {
	Code       string
	DiscountID uuid.UUID
	Created    bool
	Reason     string
	Message    string
}

type BulkCreateResult struct {
	Items []BulkItemResult
}

type DiscountCommands interface {
	Create(ctx context.Context, req CreateDiscountRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateDiscountRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Evaluate(ctx context.Context, code string, order discount.OrderContext) (*discount.EligibilityResult, error)
	Redeem(ctx context.Context, req RedeemRequest) error
	BulkCreate(ctx context.Context, reqs []CreateDiscountRequest) (*BulkCreateResult, error)
	AutoGenerate(ctx context.Context, req AutoGenerateRequest) (uuid.UUID, error)
}

type discountUseCaseImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	audit   shared.AuditSink
	metrics *metrics.Metrics
}

func NewDiscountCommands(uow shared.UnitOfWork, clk clock.Clock, audit shared.AuditSink, m *metrics.Metrics) DiscountCommands {
	return &discountUseCaseImpl{uow: uow, clock: clk, audit: audit, metrics: m}
}

func (uc *discountUseCaseImpl) Create(ctx context.Context, req CreateDiscountRequest) (uuid.UUID, error) {
	entity, err := uc.validateCreate(ctx, uc.uow.CommandReads(), req, uuid.New())
	if err != nil {
		return uuid.Nil, err
	}

	var createdID uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.Discounts().Create(ctx, tx.DB(), entity)
		if derr != nil {
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return ErrDuplicateCode
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		createdID = id
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	uc.audit.Record(ctx, shared.AuditEvent{
		Action:     "discount.created",
		DiscountID: createdID,
		Code:       entity.Code().String(),
	})
	return createdID, nil
}

// validateCreate runs the creation checks in their fixed order: code
// uniqueness, applicability references, then structural validation.
func (uc *discountUseCaseImpl) validateCreate(
	ctx context.Context,
	reads shared.CommandReads,
	req CreateDiscountRequest,
	id uuid.UUID,
) (*discount.Discount, error) {
	code := strings.TrimSpace(req.Code)

	existing, err := reads.DiscountByCode(ctx, code)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if existing != nil {
		// Status-blind on purpose: an inactive discount still owns its code.
		return nil, ErrDuplicateCode
	}

	if err := uc.checkReferences(ctx, reads, req.Categories, req.Products); err != nil {
		return nil, err
	}

	entity, err := discount.NewDiscount(
		id,
		code,
		discount.Kind(req.Kind),
		req.Value,
		req.MinPurchase,
		req.MaxDiscount,
		req.ValidFrom,
		req.ValidTo,
		req.UsageLimit,
		req.PerCustomerLimit,
		discount.NewApplicability(req.Categories, req.Products),
		discount.Status(req.Status),
	)
	if err != nil {
		return nil, errs.Mark(err, ErrValidationFailed)
	}
	return entity, nil
}

func (uc *discountUseCaseImpl) checkReferences(
	ctx context.Context,
	reads shared.CommandReads,
	categories, products []uuid.UUID,
) error {
	missingCats, err := reads.MissingCategories(ctx, categories)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	missingProds, err := reads.MissingProducts(ctx, products)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if len(missingCats) > 0 || len(missingProds) > 0 {
		return errs.Mark(&ReferenceError{
			MissingCategories: missingCats,
			MissingProducts:   missingProds,
		}, ErrInvalidReference)
	}
	return nil
}

func (uc *discountUseCaseImpl) Update(ctx context.Context, id uuid.UUID, req UpdateDiscountRequest) error {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().DiscountByID(ctx, id)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrDiscountNotFound
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}

		if req.Code != nil {
			newCode := strings.TrimSpace(*req.Code)
			if newCode != snap.Code {
				conflict, cerr := tx.Reads().DiscountByCode(ctx, newCode)
				if cerr != nil && !infra.IsKind(cerr, infra.KindNotFound) {
					return errs.Mark(cerr, ErrDatabaseOperationFailed)
				}
				if conflict != nil && conflict.ID != id {
					return ErrDuplicateCode
				}
			}
			snap.Code = newCode
		}
		if req.Kind != nil {
			snap.Kind = *req.Kind
		}
		if req.Value != nil {
			snap.Value = *req.Value
		}
		if req.MinPurchase != nil {
			snap.MinPurchase = *req.MinPurchase
		}
		if req.MaxDiscount != nil {
			snap.MaxDiscount = req.MaxDiscount
		}
		if req.ValidFrom != nil {
			snap.ValidFrom = *req.ValidFrom
		}
		if req.ValidTo != nil {
			snap.ValidTo = *req.ValidTo
		}
		if req.UsageLimit != nil {
			snap.UsageLimit = req.UsageLimit
		}
		if req.PerCustomerLimit != nil {
			snap.PerCustomerLimit = *req.PerCustomerLimit
		}
		if req.Categories != nil {
			snap.Categories = *req.Categories
		}
		if req.Products != nil {
			snap.Products = *req.Products
		}
		if req.Status != nil {
			snap.Status = *req.Status
		}

		if cerr := uc.checkReferencesIfSupplied(ctx, tx.Reads(), req); cerr != nil {
			return cerr
		}

		entity, derr := discount.NewDiscount(
			snap.ID,
			snap.Code,
			discount.Kind(snap.Kind),
			snap.Value,
			snap.MinPurchase,
			snap.MaxDiscount,
			snap.ValidFrom,
			snap.ValidTo,
			snap.UsageLimit,
			snap.PerCustomerLimit,
			discount.NewApplicability(snap.Categories, snap.Products),
			discount.Status(snap.Status),
		)
		if derr != nil {
			return errs.Mark(derr, ErrValidationFailed)
		}

		if derr := tx.Discounts().Update(ctx, tx.DB(), entity); derr != nil {
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return ErrDuplicateCode
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.audit.Record(ctx, shared.AuditEvent{Action: "discount.updated", DiscountID: id})
	return nil
}

func (uc *discountUseCaseImpl) checkReferencesIfSupplied(
	ctx context.Context,
	reads shared.CommandReads,
	req UpdateDiscountRequest,
) error {
	var categories, products []uuid.UUID
	if req.Categories != nil {
		categories = *req.Categories
	}
	if req.Products != nil {
		products = *req.Products
	}
	if len(categories) == 0 && len(products) == 0 {
		return nil
	}
	return uc.checkReferences(ctx, reads, categories, products)
}

func (uc *discountUseCaseImpl) Delete(ctx context.Context, id uuid.UUID) error {
	var code string
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().DiscountByID(ctx, id)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrDiscountNotFound
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		if snap.UsageCount > 0 {
			return errs.Mark(&InUseError{Code: snap.Code, UsageCount: snap.UsageCount}, ErrDiscountInUse)
		}
		code = snap.Code
		if derr := tx.Discounts().Delete(ctx, tx.DB(), id); derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.audit.Record(ctx, shared.AuditEvent{Action: "discount.deleted", DiscountID: id, Code: code})
	return nil
}

func (uc *discountUseCaseImpl) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	parsed, err := discount.NewStatus(status)
	if err != nil {
		return errs.Mark(err, ErrValidationFailed)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if derr := tx.Discounts().SetStatus(ctx, tx.DB(), id, parsed); derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrDiscountNotFound
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.audit.Record(ctx, shared.AuditEvent{
		Action:     "discount.status_changed",
		DiscountID: id,
		Detail:     map[string]any{"status": status},
	})
	return nil
}

// Evaluate resolves a code against an order context. Business rejections come
// back inside the result; the error return is reserved for store failures.
func (uc *discountUseCaseImpl) Evaluate(ctx context.Context, code string, order discount.OrderContext) (*discount.EligibilityResult, error) {
	reads := uc.uow.CommandReads()

	snap, err := reads.DiscountByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			result := discount.NotFoundResult(code)
			uc.metrics.ObserveEvaluation(string(result.Reason))
			return &result, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	customerUses, err := reads.CustomerUsageCount(ctx, snap.ID, order.CustomerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	result := discount.Evaluate(snap.ToDomain(), order, customerUses, uc.clock.Now())
	if result.Eligible {
		uc.metrics.ObserveEvaluation("eligible")
	} else {
		uc.metrics.ObserveEvaluation(string(result.Reason))
	}
	return &result, nil
}

// Redeem commits one redemption. The discount row is locked for the duration
// of the transaction, so the ceiling checks and the counter increment behave
// as if serialized per discount.
func (uc *discountUseCaseImpl) Redeem(ctx context.Context, req RedeemRequest) error {
	if req.AppliedAmount < 0 {
		return ErrValidationFailed
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Discounts().LockByID(ctx, tx.DB(), req.DiscountID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrDiscountNotFound
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		if snap.Status != string(discount.StatusActive) {
			return ErrDiscountInactive
		}

		uses, derr := tx.Usages().CountByCustomer(ctx, tx.DB(), req.DiscountID, req.CustomerID)
		if derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		if uses >= snap.PerCustomerLimit {
			return ErrCustomerLimitReached
		}

		incremented, derr := tx.Discounts().IncrementUsage(ctx, tx.DB(), req.DiscountID)
		if derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		if !incremented {
			return ErrUsageLimitReached
		}

		_, derr = tx.Usages().Insert(ctx, tx.DB(), shared.UsageRecord{
			DiscountID:    req.DiscountID,
			OrderID:       req.OrderID,
			CustomerID:    req.CustomerID,
			DiscountValue: req.AppliedAmount,
			AppliedAt:     uc.clock.Now(),
		})
		if derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		return nil
	})

	uc.metrics.ObserveRedemption(err == nil)
	if err != nil {
		return err
	}

	uc.audit.Record(ctx, shared.AuditEvent{
		Action:     "discount.redeemed",
		DiscountID: req.DiscountID,
		Detail: map[string]any{
			"order_id":    req.OrderID,
			"customer_id": req.CustomerID,
			"amount":      req.AppliedAmount,
		},
	})
	return nil
}

// BulkCreate validates intra-batch code uniqueness all-or-nothing, then
// resolves conflicts against the existing store with one collective query and
// reports the rest item by item.
func (uc *discountUseCaseImpl) BulkCreate(ctx context.Context, reqs []CreateDiscountRequest) (*BulkCreateResult, error) {
	seen := make(map[string]struct{}, len(reqs))
	var dupes []string
	codes := make([]string, 0, len(reqs))
	for _, req := range reqs {
		code := strings.TrimSpace(req.Code)
		if _, ok := seen[code]; ok {
			dupes = append(dupes, code)
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(dupes) > 0 {
		return nil, errs.Mark(&BatchDuplicateError{Codes: dupes}, ErrBatchDuplicateCode)
	}

	reads := uc.uow.CommandReads()
	existing, err := reads.ExistingCodes(ctx, codes)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, code := range existing {
		taken[code] = struct{}{}
	}

	result := &BulkCreateResult{Items: make([]BulkItemResult, len(reqs))}
	entities := make([]*discount.Discount, len(reqs))
	for i, req := range reqs {
		code := strings.TrimSpace(req.Code)
		item := BulkItemResult{Code: code}

		if _, ok := taken[code]; ok {
			item.Reason = "DUPLICATE_CODE"
			item.Message = "code already exists"
			result.Items[i] = item
			continue
		}

		if rerr := uc.checkReferences(ctx, reads, req.Categories, req.Products); rerr != nil {
			item.Reason = "INVALID_REFERENCE"
			item.Message = rerr.Error()
			result.Items[i] = item
			continue
		}

		entity, derr := discount.NewDiscount(
			uuid.New(),
			code,
			discount.Kind(req.Kind),
			req.Value,
			req.MinPurchase,
			req.MaxDiscount,
			req.ValidFrom,
			req.ValidTo,
			req.UsageLimit,
			req.PerCustomerLimit,
			discount.NewApplicability(req.Categories, req.Products),
			discount.Status(req.Status),
		)
		if derr != nil {
			item.Reason = "VALIDATION_FAILED"
			item.Message = derr.Error()
			result.Items[i] = item
			continue
		}
		entities[i] = entity
		result.Items[i] = item
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for i, entity := range entities {
			if entity == nil {
				continue
			}
			id, derr := tx.Discounts().Create(ctx, tx.DB(), entity)
			if derr != nil {
				return errs.Mark(derr, ErrDatabaseOperationFailed)
			}
			result.Items[i].DiscountID = id
			result.Items[i].Created = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range result.Items {
		if item.Created {
			uc.audit.Record(ctx, shared.AuditEvent{
				Action:     "discount.created",
				DiscountID: item.DiscountID,
				Code:       item.Code,
			})
		}
	}
	return result, nil
}

// AutoGenerate synthesizes a collision-free code and funnels into the
// standard creation path.
func (uc *discountUseCaseImpl) AutoGenerate(ctx context.Context, req AutoGenerateRequest) (uuid.UUID, error) {
	code := discount.GenerateCode(req.Rule, req.Category, uc.clock.Now())

	var categories []uuid.UUID
	if req.Category != nil {
		categories = []uuid.UUID{*req.Category}
	}

	kind := req.Kind
	if kind == "" {
		kind = string(discount.KindPercentage)
	}
	perCustomerLimit := req.PerCustomerLimit
	if perCustomerLimit == 0 {
		perCustomerLimit = 1
	}

	return uc.Create(ctx, CreateDiscountRequest{
		Code:             code.String(),
		Kind:             kind,
		Value:            req.Value,
		MinPurchase:      req.MinPurchase,
		MaxDiscount:      req.MaxDiscount,
		ValidFrom:        req.ValidFrom,
		ValidTo:          req.ValidTo,
		UsageLimit:       req.UsageLimit,
		PerCustomerLimit: perCustomerLimit,
		Categories:       categories,
		Status:           string(discount.StatusActive),
	})
}
