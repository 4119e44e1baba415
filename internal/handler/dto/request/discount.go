package request

import (
	"strings"
	"time"

	"discount-service/internal/domain/discount"
	"discount-service/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateDiscountRequest struct {
	Code             string      `json:"code" binding:"required"`
	Kind             string      `json:"kind" binding:"required,oneof=percentage fixed_amount free_shipping"`
	Value            float64     `json:"value" binding:"min=0"`
	MinPurchase      float64     `json:"min_purchase" binding:"omitempty,min=0"`
	MaxDiscount      *float64    `json:"max_discount,omitempty" binding:"omitempty,gt=0"`
	ValidFrom        time.Time   `json:"valid_from" binding:"required"`
	ValidTo          time.Time   `json:"valid_to" binding:"required"`
	UsageLimit       *int        `json:"usage_limit,omitempty" binding:"omitempty,min=1"`
	PerCustomerLimit *int        `json:"per_customer_limit,omitempty" binding:"omitempty,min=1"`
	Categories       []uuid.UUID `json:"applicable_categories,omitempty"`
	Products         []uuid.UUID `json:"applicable_products,omitempty"`
	Status           string      `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

func (r CreateDiscountRequest) ToCommand() commands.CreateDiscountRequest {
	perCustomer := 1
	if r.PerCustomerLimit != nil {
		perCustomer = *r.PerCustomerLimit
	}
	status := r.Status
	if status == "" {
		status = string(discount.StatusActive)
	}
	return commands.CreateDiscountRequest{
		Code:             strings.TrimSpace(r.Code),
		Kind:             r.Kind,
		Value:            r.Value,
		MinPurchase:      r.MinPurchase,
		MaxDiscount:      r.MaxDiscount,
		ValidFrom:        r.ValidFrom,
		ValidTo:          r.ValidTo,
		UsageLimit:       r.UsageLimit,
		PerCustomerLimit: perCustomer,
		Categories:       r.Categories,
		Products:         r.Products,
		Status:           status,
	}
}

type UpdateDiscountRequest struct {
	Code             *string      `json:"code,omitempty"`
	Kind             *string      `json:"kind,omitempty" binding:"omitempty,oneof=percentage fixed_amount free_shipping"`
	Value            *float64     `json:"value,omitempty" binding:"omitempty,min=0"`
	MinPurchase      *float64     `json:"min_purchase,omitempty" binding:"omitempty,min=0"`
	MaxDiscount      *float64     `json:"max_discount,omitempty" binding:"omitempty,gt=0"`
	ValidFrom        *time.Time   `json:"valid_from,omitempty"`
	ValidTo          *time.Time   `json:"valid_to,omitempty"`
	UsageLimit       *int         `json:"usage_limit,omitempty" binding:"omitempty,min=1"`
	PerCustomerLimit *int         `json:"per_customer_limit,omitempty" binding:"omitempty,min=1"`
	Categories       *[]uuid.UUID `json:"applicable_categories,omitempty"`
	Products         *[]uuid.UUID `json:"applicable_products,omitempty"`
	Status           *string      `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

func (r UpdateDiscountRequest) ToCommand() commands.UpdateDiscountRequest {
	code := r.Code
	if code != nil {
		trimmed := strings.TrimSpace(*code)
		code = &trimmed
	}
	return commands.UpdateDiscountRequest{
		Code:             code,
		Kind:             r.Kind,
		Value:            r.Value,
		MinPurchase:      r.MinPurchase,
		MaxDiscount:      r.MaxDiscount,
		ValidFrom:        r.ValidFrom,
		ValidTo:          r.ValidTo,
		UsageLimit:       r.UsageLimit,
		PerCustomerLimit: r.PerCustomerLimit,
		Categories:       r.Categories,
		Products:         r.Products,
		Status:           r.Status,
	}
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type LineItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	CategoryID uuid.UUID `json:"category_id" binding:"required"`
}

type EvaluateDiscountRequest struct {
	Code       string            `json:"code" binding:"required"`
	Subtotal   float64           `json:"subtotal" binding:"min=0"`
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	Items      []LineItemRequest `json:"items,omitempty" binding:"omitempty,dive"`
}

func (r EvaluateDiscountRequest) ToOrderContext() discount.OrderContext {
	items := make([]discount.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = discount.LineItem{
			ProductID:  item.ProductID,
			CategoryID: item.CategoryID,
		}
	}
	return discount.OrderContext{
		Subtotal:   r.Subtotal,
		CustomerID: r.CustomerID,
		Items:      items,
	}
}

type RedeemDiscountRequest struct {
	DiscountID    uuid.UUID `json:"discount_id" binding:"required"`
	OrderID       uuid.UUID `json:"order_id" binding:"required"`
	CustomerID    uuid.UUID `json:"customer_id" binding:"required"`
	AppliedAmount float64   `json:"applied_amount" binding:"min=0"`
}

func (r RedeemDiscountRequest) ToCommand() commands.RedeemRequest {
	return commands.RedeemRequest{
		DiscountID:    r.DiscountID,
		OrderID:       r.OrderID,
		CustomerID:    r.CustomerID,
		AppliedAmount: r.AppliedAmount,
	}
}

type BulkCreateRequest struct {
	Discounts []CreateDiscountRequest `json:"discounts" binding:"required,min=1,max=100,dive"`
}

func (r BulkCreateRequest) ToCommands() []commands.CreateDiscountRequest {
	reqs := make([]commands.CreateDiscountRequest, len(r.Discounts))
	for i, d := range r.Discounts {
		reqs[i] = d.ToCommand()
	}
	return reqs
}

type AutoGenerateRequest struct {
	Rule             string     `json:"rule" binding:"required"`
	Category         *uuid.UUID `json:"category,omitempty"`
	Kind             string     `json:"kind,omitempty" binding:"omitempty,oneof=percentage fixed_amount free_shipping"`
	Value            float64    `json:"value" binding:"min=0"`
	MinPurchase      float64    `json:"min_purchase" binding:"omitempty,min=0"`
	MaxDiscount      *float64   `json:"max_discount,omitempty" binding:"omitempty,gt=0"`
	ValidFrom        time.Time  `json:"valid_from" binding:"required"`
	ValidTo          time.Time  `json:"valid_to" binding:"required"`
	UsageLimit       *int       `json:"usage_limit,omitempty" binding:"omitempty,min=1"`
	PerCustomerLimit *int       `json:"per_customer_limit,omitempty" binding:"omitempty,min=1"`
}

func (r AutoGenerateRequest) ToCommand() commands.AutoGenerateRequest {
	perCustomer := 0
	if r.PerCustomerLimit != nil {
		perCustomer = *r.PerCustomerLimit
	}
	return commands.AutoGenerateRequest{
		Rule:             strings.TrimSpace(r.Rule),
		Category:         r.Category,
		Kind:             r.Kind,
		Value:            r.Value,
		MinPurchase:      r.MinPurchase,
		MaxDiscount:      r.MaxDiscount,
		ValidFrom:        r.ValidFrom,
		ValidTo:          r.ValidTo,
		UsageLimit:       r.UsageLimit,
		PerCustomerLimit: perCustomer,
	}
}
