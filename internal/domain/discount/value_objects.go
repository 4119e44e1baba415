package discount

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidCode             = errors.New("invalid discount code format")
	ErrInvalidKind             = errors.New("unknown discount kind")
	ErrInvalidStatus           = errors.New("unknown discount status")
	ErrNegativeValue           = errors.New("discount value cannot be negative")
	ErrNegativeMinPurchase     = errors.New("minimum purchase cannot be negative")
	ErrNegativeMaxDiscount     = errors.New("maximum discount cannot be negative")
	ErrInvalidWindow           = errors.New("validity window start must be before end")
	ErrInvalidUsageLimit       = errors.New("usage limit must be a positive integer")
	ErrInvalidPerCustomerLimit = errors.New("per-customer limit must be a positive integer")
)

// Codes are case-sensitive: "Save10" and "SAVE10" are distinct discounts.
var codeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Kind string

const (
	KindPercentage   Kind = "percentage"
	KindFixedAmount  Kind = "fixed_amount"
	KindFreeShipping Kind = "free_shipping"
)

func NewKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPercentage, KindFixedAmount, KindFreeShipping:
		return Kind(s), nil
	default:
		return Kind(""), ErrInvalidKind
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func NewStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive:
		return Status(s), nil
	default:
		return Status(""), ErrInvalidStatus
	}
}

// Applicability restricts a discount to catalog subsets. Empty sets mean no
// restriction. When either set is non-empty the cart must contain at least
// one line item matching a listed category OR a listed product.
type Applicability struct {
	categories map[uuid.UUID]struct{}
	products   map[uuid.UUID]struct{}
}

func NewApplicability(categories, products []uuid.UUID) Applicability {
	a := Applicability{
		categories: make(map[uuid.UUID]struct{}, len(categories)),
		products:   make(map[uuid.UUID]struct{}, len(products)),
	}
	for _, id := range categories {
		a.categories[id] = struct{}{}
	}
	for _, id := range products {
		a.products[id] = struct{}{}
	}
	return a
}

func (a Applicability) IsRestricted() bool {
	return len(a.categories) > 0 || len(a.products) > 0
}

func (a Applicability) MatchesCart(items []LineItem) bool {
	if !a.IsRestricted() {
		return true
	}
	for _, item := range items {
		if _, ok := a.categories[item.CategoryID]; ok {
			return true
		}
		if _, ok := a.products[item.ProductID]; ok {
			return true
		}
	}
	return false
}

func (a Applicability) Categories() []uuid.UUID {
	return setToSlice(a.categories)
}

func (a Applicability) Products() []uuid.UUID {
	return setToSlice(a.products)
}

func setToSlice(set map[uuid.UUID]struct{}) []uuid.UUID {
	if len(set) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
