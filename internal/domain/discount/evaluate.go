package discount

import (
	"time"

	"github.com/google/uuid"
)

// Reason identifies why an evaluation rejected a discount. These are expected
// business outcomes, not faults, and surface to callers as typed results.
type Reason string

const (
	ReasonCodeNotFound         Reason = "CODE_NOT_FOUND"
	ReasonInactive             Reason = "INACTIVE"
	ReasonNotYetActive         Reason = "NOT_YET_ACTIVE"
	ReasonExpired              Reason = "EXPIRED"
	ReasonBelowMinPurchase     Reason = "BELOW_MIN_PURCHASE"
	ReasonUsageLimitReached    Reason = "USAGE_LIMIT_REACHED"
	ReasonCustomerLimitReached Reason = "CUSTOMER_LIMIT_REACHED"
	ReasonNotApplicableToCart  Reason = "NOT_APPLICABLE_TO_CART"
)

type LineItem struct {
	ProductID  uuid.UUID
	CategoryID uuid.UUID
}

// OrderContext is the order-side input to evaluation: what the customer is
// buying and for how much.
type OrderContext struct {
	Subtotal   float64
	CustomerID uuid.UUID
	Items      []LineItem
}

// EligibilityResult carries either the computed discount or a rejection
// reason with enough numbers for the caller to render an actionable message.
type EligibilityResult struct {
	Eligible     bool
	Reason       Reason
	DiscountID   uuid.UUID
	Code         string
	Amount       float64
	FreeShipping bool

	// Rejection detail, populated for the matching reason only.
	Shortfall        float64
	MinPurchase      float64
	UsageCount       int
	UsageLimit       *int
	CustomerUses     int
	PerCustomerLimit int
}

// NotFoundResult is the evaluation outcome when no discount matches the code.
func NotFoundResult(code string) EligibilityResult {
	return EligibilityResult{Code: code, Reason: ReasonCodeNotFound}
}

// Evaluate runs the eligibility checks in their fixed order, short-circuiting
// on the first failure. customerUses is the number of usage records already
// committed for (discount, order.CustomerID). The function is pure: same
// discount state, order context and time always produce the same result.
func Evaluate(d *Discount, order OrderContext, customerUses int, now time.Time) EligibilityResult {
	result := EligibilityResult{
		DiscountID: d.id,
		Code:       d.code.String(),
	}

	if !d.IsActive() {
		result.Reason = ReasonInactive
		return result
	}

	if now.Before(d.validFrom) {
		result.Reason = ReasonNotYetActive
		return result
	}
	if !d.InWindowAt(now) {
		result.Reason = ReasonExpired
		return result
	}

	if order.Subtotal < d.minPurchase {
		result.Reason = ReasonBelowMinPurchase
		result.MinPurchase = d.minPurchase
		result.Shortfall = d.minPurchase - order.Subtotal
		return result
	}

	if d.UsageExhausted() {
		result.Reason = ReasonUsageLimitReached
		result.UsageCount = d.usageCount
		result.UsageLimit = d.usageLimit
		return result
	}

	if customerUses >= d.perCustomerLimit {
		result.Reason = ReasonCustomerLimitReached
		result.CustomerUses = customerUses
		result.PerCustomerLimit = d.perCustomerLimit
		return result
	}

	if !d.applicability.MatchesCart(order.Items) {
		result.Reason = ReasonNotApplicableToCart
		return result
	}

	amount, freeShipping := d.ComputeAmount(order.Subtotal)
	result.Eligible = true
	result.Amount = amount
	result.FreeShipping = freeShipping
	return result
}
