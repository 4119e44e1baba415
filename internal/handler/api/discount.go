package api

import (
	"errors"
	"net/http"
	"strconv"

	"discount-service/internal/usecase/commands"
	"discount-service/internal/usecase/queries"

	reqdto "discount-service/internal/handler/dto/request"
	resdto "discount-service/internal/handler/dto/response"
	"discount-service/internal/handler/httperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DiscountHandler struct {
	cmds commands.DiscountCommands
	q    queries.DiscountQueries
}

func NewDiscountHandler(cmds commands.DiscountCommands, q queries.DiscountQueries) *DiscountHandler {
	return &DiscountHandler{cmds: cmds, q: q}
}

// @Summary Create discount
// @Description Create a new discount with validity window, limits and applicability
// @Tags discounts
// @Accept json
// @Produce json
// @Param request body reqdto.CreateDiscountRequest true "Create discount request"
// @Success 201 {object} resdto.DiscountResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /discounts [post]
func (h *DiscountHandler) Create(c *gin.Context) {
	var req reqdto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	id, err := h.cmds.Create(c.Request.Context(), req.ToCommand())
	if err != nil {
		abortCommandError(c, err, "Create discount failed")
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load discount", nil)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromDiscountView(view))
}

// @Summary Get discount
// @Description Get a discount by ID
// @Tags discounts
// @Produce json
// @Param id path string true "Discount ID"
// @Success 200 {object} resdto.DiscountResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /discounts/{id} [get]
func (h *DiscountHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrDiscountNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDiscountView(view))
}

// @Summary List discounts
// @Description List discounts with optional status/kind/code filters and keyset pagination
// @Tags discounts
// @Produce json
// @Param status query string false "Filter by status (active|inactive)"
// @Param kind query string false "Filter by kind"
// @Param code query string false "Filter by exact code"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} map[string]any
// @Failure 400 {object} httperr.Response
// @Router /discounts [get]
func (h *DiscountHandler) List(c *gin.Context) {
	var filters queries.DiscountFilters
	if v := c.Query("status"); v != "" {
		filters.Status = &v
	}
	if v := c.Query("kind"); v != "" {
		filters.Kind = &v
	}
	if v := c.Query("code"); v != "" {
		filters.Code = &v
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}
	items, next, err := h.q.List(c.Request.Context(), filters, cursor, limit)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidCursor) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	resp := gin.H{"discounts": resdto.FromDiscountList(items)}
	if next != nil {
		resp["next_cursor"] = next.After
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update discount
// @Description Partially update a discount; omitted fields are unchanged
// @Tags discounts
// @Accept json
// @Produce json
// @Param id path string true "Discount ID"
// @Param request body reqdto.UpdateDiscountRequest true "Update discount request"
// @Success 200 {object} resdto.DiscountResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /discounts/{id} [patch]
func (h *DiscountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.UpdateDiscountRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	if err := h.cmds.Update(c.Request.Context(), id, req.ToCommand()); err != nil {
		abortCommandError(c, err, "Update discount failed")
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load discount", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDiscountView(view))
}

// @Summary Delete discount
// @Description Delete a discount that has never been redeemed
// @Tags discounts
// @Param id path string true "Discount ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /discounts/{id} [delete]
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), id); err != nil {
		abortCommandError(c, err, "Delete discount failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set discount status
// @Description Activate or deactivate a discount
// @Tags discounts
// @Accept json
// @Param id path string true "Discount ID"
// @Param request body reqdto.SetStatusRequest true "Status request"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /discounts/{id}/status [patch]
func (h *DiscountHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.SetStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	if err := h.cmds.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		abortCommandError(c, err, "Set status failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Discount usage history
// @Description List redemptions of a discount, newest first
// @Tags discounts
// @Produce json
// @Param id path string true "Discount ID"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} map[string]any
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /discounts/{id}/usages [get]
func (h *DiscountHandler) UsageHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}
	usages, next, err := h.q.UsageHistory(c.Request.Context(), id, cursor, limit)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrDiscountNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
		case errors.Is(err, queries.ErrInvalidCursor):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		}
		return
	}
	resp := gin.H{"usages": resdto.FromUsageList(usages)}
	if next != nil {
		resp["next_cursor"] = next.After
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Evaluate discount
// @Description Check a code against an order without consuming anything
// @Tags discounts
// @Accept json
// @Produce json
// @Param request body reqdto.EvaluateDiscountRequest true "Evaluate request"
// @Success 200 {object} resdto.EligibilityResponse
// @Failure 400 {object} httperr.Response
// @Router /discounts/evaluate [post]
func (h *DiscountHandler) Evaluate(c *gin.Context) {
	var req reqdto.EvaluateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.Evaluate(c.Request.Context(), req.Code, req.ToOrderContext())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Evaluate failed", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromEligibilityResult(result))
}

// @Summary Redeem discount
// @Description Record a redemption, consuming one use of the discount
// @Tags discounts
// @Accept json
// @Param request body reqdto.RedeemDiscountRequest true "Redeem request"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /discounts/redeem [post]
func (h *DiscountHandler) Redeem(c *gin.Context) {
	var req reqdto.RedeemDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := h.cmds.Redeem(c.Request.Context(), req.ToCommand()); err != nil {
		abortCommandError(c, err, "Redeem failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Bulk create discounts
// @Description Create up to 100 discounts in one transaction, reporting per-item outcomes
// @Tags discounts
// @Accept json
// @Produce json
// @Param request body reqdto.BulkCreateRequest true "Bulk create request"
// @Success 200 {object} resdto.BulkCreateResponse
// @Failure 400 {object} httperr.Response
// @Router /discounts/bulk [post]
func (h *DiscountHandler) BulkCreate(c *gin.Context) {
	var req reqdto.BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.BulkCreate(c.Request.Context(), req.ToCommands())
	if err != nil {
		abortCommandError(c, err, "Bulk create failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromBulkCreateResult(result))
}

// @Summary Auto-generate discount
// @Description Create a discount with a generated code derived from a naming rule
// @Tags discounts
// @Accept json
// @Produce json
// @Param request body reqdto.AutoGenerateRequest true "Auto-generate request"
// @Success 201 {object} resdto.DiscountResponse
// @Failure 400 {object} httperr.Response
// @Router /discounts/auto [post]
func (h *DiscountHandler) AutoGenerate(c *gin.Context) {
	var req reqdto.AutoGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	id, err := h.cmds.AutoGenerate(c.Request.Context(), req.ToCommand())
	if err != nil {
		abortCommandError(c, err, "Auto-generate failed")
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load discount", nil)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromDiscountView(view))
}

// abortCommandError translates command sentinels into HTTP status codes,
// attaching the typed detail payloads where the command provides them.
func abortCommandError(c *gin.Context, err error, msg string) {
	var refErr *commands.ReferenceError
	if errors.As(err, &refErr) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unknown category or product references", gin.H{
			"missing_categories": refErr.MissingCategories,
			"missing_products":   refErr.MissingProducts,
		})
		return
	}
	var inUseErr *commands.InUseError
	if errors.As(err, &inUseErr) {
		httperr.AbortWithError(c, http.StatusConflict, err, "Discount has redemptions; deactivate it instead", gin.H{
			"code":        inUseErr.Code,
			"usage_count": inUseErr.UsageCount,
		})
		return
	}
	var batchErr *commands.BatchDuplicateError
	if errors.As(err, &batchErr) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Duplicate codes within batch", gin.H{
			"codes": batchErr.Codes,
		})
		return
	}

	switch {
	case errors.Is(err, commands.ErrDiscountNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errors.Is(err, commands.ErrDuplicateCode):
		httperr.AbortWithError(c, http.StatusConflict, err, "Discount code already exists", nil)
	case errors.Is(err, commands.ErrValidationFailed):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", nil)
	case errors.Is(err, commands.ErrDiscountInactive):
		httperr.AbortWithError(c, http.StatusConflict, err, "Discount is inactive", nil)
	case errors.Is(err, commands.ErrUsageLimitReached):
		httperr.AbortWithError(c, http.StatusConflict, err, "Usage limit reached", nil)
	case errors.Is(err, commands.ErrCustomerLimitReached):
		httperr.AbortWithError(c, http.StatusConflict, err, "Per-customer limit reached", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, msg, nil)
	}
}
