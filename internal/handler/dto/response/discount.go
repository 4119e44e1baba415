package response

import (
	"time"

	"discount-service/internal/domain/discount"
	"discount-service/internal/usecase/commands"
	"discount-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type DiscountResponse struct {
	ID               uuid.UUID   `json:"id"`
	Code             string      `json:"code"`
	Kind             string      `json:"kind"`
	Value            float64     `json:"value"`
	MinPurchase      float64     `json:"minPurchase"`
	MaxDiscount      *float64    `json:"maxDiscount,omitempty"`
	ValidFrom        time.Time   `json:"validFrom"`
	ValidTo          time.Time   `json:"validTo"`
	UsageLimit       *int        `json:"usageLimit,omitempty"`
	PerCustomerLimit int         `json:"perCustomerLimit"`
	Categories       []uuid.UUID `json:"applicableCategories"`
	Products         []uuid.UUID `json:"applicableProducts"`
	Status           string      `json:"status"`
	UsageCount       int         `json:"usageCount"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

type DiscountListItemResponse struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Kind       string    `json:"kind"`
	Value      float64   `json:"value"`
	Status     string    `json:"status"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidTo    time.Time `json:"validTo"`
	UsageCount int       `json:"usageCount"`
	UsageLimit *int      `json:"usageLimit,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type UsageResponse struct {
	ID            uuid.UUID `json:"id"`
	DiscountID    uuid.UUID `json:"discountId"`
	OrderID       uuid.UUID `json:"orderId"`
	CustomerID    uuid.UUID `json:"customerId"`
	DiscountValue float64   `json:"discountValue"`
	AppliedAt     time.Time `json:"appliedAt"`
}

func FromDiscountView(view *queries.DiscountView) *DiscountResponse {
	var resp DiscountResponse
	_ = copier.Copy(&resp, view)
	if resp.Categories == nil {
		resp.Categories = []uuid.UUID{}
	}
	if resp.Products == nil {
		resp.Products = []uuid.UUID{}
	}
	return &resp
}

func FromDiscountList(items []*queries.DiscountListItem) []*DiscountListItemResponse {
	result := make([]*DiscountListItemResponse, len(items))
	for i, item := range items {
		var resp DiscountListItemResponse
		_ = copier.Copy(&resp, item)
		result[i] = &resp
	}
	return result
}

func FromUsageList(usages []*queries.UsageView) []*UsageResponse {
	result := make([]*UsageResponse, len(usages))
	for i, usage := range usages {
		var resp UsageResponse
		_ = copier.Copy(&resp, usage)
		result[i] = &resp
	}
	return result
}

type EligibilityResponse struct {
	Eligible         bool       `json:"eligible"`
	Reason           string     `json:"reason,omitempty"`
	DiscountID       *uuid.UUID `json:"discountId,omitempty"`
	Code             string     `json:"code"`
	Amount           float64    `json:"amount"`
	FreeShipping     bool       `json:"freeShipping"`
	Shortfall        *float64   `json:"shortfall,omitempty"`
	MinPurchase      *float64   `json:"minPurchase,omitempty"`
	UsageCount       *int       `json:"usageCount,omitempty"`
	UsageLimit       *int       `json:"usageLimit,omitempty"`
	CustomerUses     *int       `json:"customerUses,omitempty"`
	PerCustomerLimit *int       `json:"perCustomerLimit,omitempty"`
}

func FromEligibilityResult(result *discount.EligibilityResult) *EligibilityResponse {
	resp := &EligibilityResponse{
		Eligible:     result.Eligible,
		Reason:       string(result.Reason),
		Code:         result.Code,
		Amount:       result.Amount,
		FreeShipping: result.FreeShipping,
	}
	if result.DiscountID != uuid.Nil {
		id := result.DiscountID
		resp.DiscountID = &id
	}

	switch result.Reason {
	case discount.ReasonBelowMinPurchase:
		shortfall, minPurchase := result.Shortfall, result.MinPurchase
		resp.Shortfall = &shortfall
		resp.MinPurchase = &minPurchase
	case discount.ReasonUsageLimitReached:
		usageCount := result.UsageCount
		resp.UsageCount = &usageCount
		resp.UsageLimit = result.UsageLimit
	case discount.ReasonCustomerLimitReached:
		uses, limit := result.CustomerUses, result.PerCustomerLimit
		resp.CustomerUses = &uses
		resp.PerCustomerLimit = &limit
	}
	return resp
}

type BulkItemResponse struct {
	Code       string     `json:"code"`
	DiscountID *uuid.UUID `json:"discountId,omitempty"`
	Created    bool       `json:"created"`
	Reason     string     `json:"reason,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type BulkCreateResponse struct {
	Created int                `json:"created"`
	Failed  int                `json:"failed"`
	Items   []BulkItemResponse `json:"items"`
}

func FromBulkCreateResult(result *commands.BulkCreateResult) *BulkCreateResponse {
	resp := &BulkCreateResponse{
		Items: make([]BulkItemResponse, len(result.Items)),
	}
	for i, item := range result.Items {
		out := BulkItemResponse{
			Code:    item.Code,
			Created: item.Created,
			Reason:  item.Reason,
			Message: item.Message,
		}
		if item.Created {
			id := item.DiscountID
			out.DiscountID = &id
			resp.Created++
		} else {
			resp.Failed++
		}
		resp.Items[i] = out
	}
	return resp
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}
