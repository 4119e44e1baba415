package discount

import (
	"time"

	"github.com/google/uuid"
)

// windowEndInclusive controls whether a discount is still eligible at the
// exact end of its validity window. The admin UI communicates windows as
// "valid through <date>", so the end bound is inclusive. Flip here if product
// decides otherwise; no call site encodes the comparison itself.
const windowEndInclusive = true

type Discount struct {
	id               uuid.UUID
	code             Code
	kind             Kind
	value            float64
	minPurchase      float64
	maxDiscount      *float64
	validFrom        time.Time
	validTo          time.Time
	usageLimit       *int
	perCustomerLimit int
	applicability    Applicability
	status           Status
	usageCount       int
	createdAt        time.Time
	updatedAt        time.Time
}

// NewDiscount validates and assembles a discount about to be persisted.
// usageCount starts at zero; createdAt is assigned by the store.
func NewDiscount(
	id uuid.UUID,
	code string,
	kind Kind,
	value float64,
	minPurchase float64,
	maxDiscount *float64,
	validFrom, validTo time.Time,
	usageLimit *int,
	perCustomerLimit int,
	applicability Applicability,
	status Status,
) (*Discount, error) {
	discountCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}
	if _, err := NewKind(string(kind)); err != nil {
		return nil, err
	}
	if _, err := NewStatus(string(status)); err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, ErrNegativeValue
	}
	if minPurchase < 0 {
		return nil, ErrNegativeMinPurchase
	}
	if maxDiscount != nil && *maxDiscount < 0 {
		return nil, ErrNegativeMaxDiscount
	}
	if !validFrom.Before(validTo) {
		return nil, ErrInvalidWindow
	}
	if usageLimit != nil && *usageLimit <= 0 {
		return nil, ErrInvalidUsageLimit
	}
	if perCustomerLimit <= 0 {
		return nil, ErrInvalidPerCustomerLimit
	}

	return &Discount{
		id:               id,
		code:             discountCode,
		kind:             kind,
		value:            value,
		minPurchase:      minPurchase,
		maxDiscount:      maxDiscount,
		validFrom:        validFrom,
		validTo:          validTo,
		usageLimit:       usageLimit,
		perCustomerLimit: perCustomerLimit,
		applicability:    applicability,
		status:           status,
	}, nil
}

// Reconstruct rebuilds a discount from persisted state without re-running
// creation validation.
func Reconstruct(
	id uuid.UUID,
	code Code,
	kind Kind,
	value float64,
	minPurchase float64,
	maxDiscount *float64,
	validFrom, validTo time.Time,
	usageLimit *int,
	perCustomerLimit int,
	applicability Applicability,
	status Status,
	usageCount int,
	createdAt, updatedAt time.Time,
) *Discount {
	return &Discount{
		id:               id,
		code:             code,
		kind:             kind,
		value:            value,
		minPurchase:      minPurchase,
		maxDiscount:      maxDiscount,
		validFrom:        validFrom,
		validTo:          validTo,
		usageLimit:       usageLimit,
		perCustomerLimit: perCustomerLimit,
		applicability:    applicability,
		status:           status,
		usageCount:       usageCount,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (d *Discount) IsActive() bool {
	return d.status == StatusActive
}

// InWindowAt reports whether t falls inside the validity window.
func (d *Discount) InWindowAt(t time.Time) bool {
	if t.Before(d.validFrom) {
		return false
	}
	if windowEndInclusive {
		return !t.After(d.validTo)
	}
	return t.Before(d.validTo)
}

// UsageExhausted reports whether the global redemption ceiling is reached.
func (d *Discount) UsageExhausted() bool {
	return d.usageLimit != nil && d.usageCount >= *d.usageLimit
}

// CanBeDeleted: used discounts are deactivated, never deleted, so redemption
// history stays intact.
func (d *Discount) CanBeDeleted() bool {
	return d.usageCount == 0
}

// ComputeAmount returns the discount amount for the given subtotal. For
// free_shipping the amount is zero and the second return is true: the caller
// waives the shipping fee rather than reducing the subtotal.
func (d *Discount) ComputeAmount(subtotal float64) (float64, bool) {
	switch d.kind {
	case KindPercentage:
		amount := subtotal * d.value / 100
		if d.maxDiscount != nil && amount > *d.maxDiscount {
			amount = *d.maxDiscount
		}
		return amount, false
	case KindFixedAmount:
		if d.value > subtotal {
			return subtotal, false
		}
		return d.value, false
	case KindFreeShipping:
		return 0, true
	default:
		return 0, false
	}
}

func (d *Discount) ID() uuid.UUID                { return d.id }
func (d *Discount) Code() Code                   { return d.code }
func (d *Discount) Kind() Kind                   { return d.kind }
func (d *Discount) Value() float64               { return d.value }
func (d *Discount) MinPurchase() float64         { return d.minPurchase }
func (d *Discount) MaxDiscount() *float64        { return d.maxDiscount }
func (d *Discount) ValidFrom() time.Time         { return d.validFrom }
func (d *Discount) ValidTo() time.Time           { return d.validTo }
func (d *Discount) UsageLimit() *int             { return d.usageLimit }
func (d *Discount) PerCustomerLimit() int        { return d.perCustomerLimit }
func (d *Discount) Applicability() Applicability { return d.applicability }
func (d *Discount) Status() Status               { return d.status }
func (d *Discount) UsageCount() int              { return d.usageCount }
func (d *Discount) CreatedAt() time.Time         { return d.createdAt }
func (d *Discount) UpdatedAt() time.Time         { return d.updatedAt }
