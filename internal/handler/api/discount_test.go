//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"discount-service/internal/domain/discount"
	"discount-service/internal/handler/api"
	resdto "discount-service/internal/handler/dto/response"
	"discount-service/internal/usecase/commands"
	"discount-service/internal/usecase/queries"
	"discount-service/tests/common/builder"
	"discount-service/tests/common/httptest"
	"discount-service/tests/common/testutil"
	commandsmock "discount-service/tests/mock/commands"
	queriesmock "discount-service/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DiscountHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockDiscountCommands
	mockQueries  *queriesmock.MockDiscountQueries
	handler      *api.DiscountHandler
}

func (s *DiscountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockDiscountCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockDiscountQueries(s.mockCtrl)
	s.handler = api.NewDiscountHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/discounts", s.handler.Create)
	s.router.GET("/discounts", s.handler.List)
	s.router.POST("/discounts/bulk", s.handler.BulkCreate)
	s.router.POST("/discounts/auto", s.handler.AutoGenerate)
	s.router.POST("/discounts/evaluate", s.handler.Evaluate)
	s.router.POST("/discounts/redeem", s.handler.Redeem)
	s.router.GET("/discounts/:id", s.handler.Get)
	s.router.PATCH("/discounts/:id", s.handler.Update)
	s.router.DELETE("/discounts/:id", s.handler.Delete)
	s.router.PATCH("/discounts/:id/status", s.handler.SetStatus)
	s.router.GET("/discounts/:id/usages", s.handler.UsageHistory)
}

func (s *DiscountHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestDiscountHandlerSuite(t *testing.T) {
	suite.Run(t, new(DiscountHandlerTestSuite))
}

type testCaseDiscount struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *DiscountHandlerTestSuite) TestCreate() {
	url := "/discounts"

	reqBody := builder.NewDiscountBuilder().BuildCreateRequestDTO()
	returnView := builder.NewDiscountBuilder().BuildView()

	bound := []testCaseDiscount{
		{name: "value boundary OK (0)", mutate: testutil.Field("value", 0), expectCode: http.StatusCreated},
		{name: "value boundary invalid (-1)", mutate: testutil.Field("value", -1), expectCode: http.StatusBadRequest},
		{name: "usage_limit boundary OK (1)", mutate: testutil.Field("usage_limit", 1), expectCode: http.StatusCreated},
		{name: "usage_limit boundary invalid (0)", mutate: testutil.Field("usage_limit", 0), expectCode: http.StatusBadRequest},
		{name: "per_customer_limit boundary invalid (0)", mutate: testutil.Field("per_customer_limit", 0), expectCode: http.StatusBadRequest},
		{name: "max_discount boundary invalid (0)", mutate: testutil.Field("max_discount", 0), expectCode: http.StatusBadRequest},
	}

	missing := []testCaseDiscount{
		{name: "missing field: code (required)", mutate: testutil.Field("code", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: kind (required)", mutate: testutil.Field("kind", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: valid_from (required)", mutate: testutil.Field("valid_from", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: valid_to (required)", mutate: testutil.Field("valid_to", nil), expectCode: http.StatusBadRequest},
	}

	enums := []testCaseDiscount{
		{name: "unknown kind", mutate: testutil.Field("kind", "bogo"), expectCode: http.StatusBadRequest},
		{name: "unknown status", mutate: testutil.Field("status", "archived"), expectCode: http.StatusBadRequest},
		{name: "free_shipping kind OK", mutate: testutil.Field("kind", "free_shipping"), expectCode: http.StatusCreated},
	}

	allValidationTestCases := [][]testCaseDiscount{bound, missing, enums}

	s.Run("success: returns 201 Created with the stored discount", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(returnView.ID, nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), returnView.ID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var response resdto.DiscountResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal(returnView.Code, response.Code)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		for _, testCaseGroup := range allValidationTestCases {
			for _, tc := range testCaseGroup {
				s.Run(tc.name, func() {
					requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)

					if tc.expectCode == http.StatusCreated {
						s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
							Return(returnView.ID, nil).Times(1)
						s.mockQueries.EXPECT().GetByID(gomock.Any(), returnView.ID).
							Return(returnView, nil).Times(1)
					}
					rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap)
					if tc.expectCode == http.StatusCreated {
						httptest.AssertSuccessResponse(s.T(), rec, tc.expectCode, nil)
					} else {
						httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
					}
				})
			}
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "duplicate code",
				commandsError:  commands.ErrDuplicateCode,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already exists",
			},
			{
				name:           "domain validation failed",
				commandsError:  commands.ErrValidationFailed,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Validation failed",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Create discount failed",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(uuid.Nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})

	s.Run("error: 400 with missing reference ids in detail", func() {
		ghost := uuid.New()
		refErr := &commands.ReferenceError{MissingCategories: []uuid.UUID{ghost}}
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(uuid.Nil, refErr).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Unknown category or product references")
		s.Contains(rec.Body.String(), ghost.String())
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *DiscountHandlerTestSuite) TestGet() {
	discountID := uuid.New()
	url := "/discounts/" + discountID.String()

	returnView := builder.NewDiscountBuilder().BuildView()
	returnView.ID = discountID

	s.Run("success: returns 200 OK with DiscountResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), discountID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)

		var response resdto.DiscountResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(discountID, response.ID)
		s.Equal(returnView.Code, response.Code)
		s.NotNil(response.Categories, "applicability arrays are never null")
		s.NotNil(response.Products)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/discounts/invalid-uuid", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})

	s.Run("error: 404 Not Found for missing discount", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), discountID).
			Return(nil, queries.ErrDiscountNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})
}

// ================================================================================
// TestList
// ================================================================================

func (s *DiscountHandlerTestSuite) TestList() {
	items := []*queries.DiscountListItem{
		{ID: uuid.New(), Code: "SAVE10", Kind: "percentage", Value: 10, Status: "active", CreatedAt: time.Now()},
		{ID: uuid.New(), Code: "SAVE20", Kind: "percentage", Value: 20, Status: "active", CreatedAt: time.Now()},
	}

	s.Run("success: returns items without cursor on last page", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Nil(), 20).
			Return(items, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/discounts", nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body["discounts"], 2)
		s.NotContains(body, "next_cursor")
	})

	s.Run("success: passes filters and limit through and echoes the next cursor", func() {
		next := &queries.Cursor{After: "opaque-cursor"}
		s.mockQueries.EXPECT().
			List(gomock.Any(), gomock.Any(), gomock.Nil(), 5).
			DoAndReturn(func(_ any, filters queries.DiscountFilters, _ *queries.Cursor, _ int) ([]*queries.DiscountListItem, *queries.Cursor, error) {
				s.Require().NotNil(filters.Status)
				s.Equal("active", *filters.Status)
				s.Require().NotNil(filters.Kind)
				s.Equal("percentage", *filters.Kind)
				return items, next, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/discounts?status=active&kind=percentage&limit=5", nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("opaque-cursor", body["next_cursor"])
	})

	s.Run("error: 400 Bad Request for a malformed cursor", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), 20).
			Return(nil, nil, queries.ErrInvalidCursor).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/discounts?after=garbage", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid cursor")
	})
}

// ================================================================================
// TestUpdate
// ================================================================================

func (s *DiscountHandlerTestSuite) TestUpdate() {
	discountID := uuid.New()
	url := "/discounts/" + discountID.String()

	returnView := builder.NewDiscountBuilder().BuildView()
	returnView.ID = discountID

	s.Run("success: returns 200 OK with the updated discount", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), discountID, gomock.Any()).
			Return(nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), discountID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"value": 25})

		var response resdto.DiscountResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(discountID, response.ID)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "discount not found",
				commandsError:  commands.ErrDiscountNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Not found",
			},
			{
				name:           "code conflict",
				commandsError:  commands.ErrDuplicateCode,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already exists",
			},
			{
				name:           "validation failed",
				commandsError:  commands.ErrValidationFailed,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Validation failed",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Update(gomock.Any(), discountID, gomock.Any()).
					Return(tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"value": 25})
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestDelete
// ================================================================================

func (s *DiscountHandlerTestSuite) TestDelete() {
	discountID := uuid.New()
	url := "/discounts/" + discountID.String()

	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), discountID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Body.String())
	})

	s.Run("error: 409 Conflict with redemption counts for an in-use discount", func() {
		inUse := &commands.InUseError{Code: "SAVE10", UsageCount: 7}
		s.mockCommands.EXPECT().Delete(gomock.Any(), discountID).
			Return(inUse).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "deactivate it instead")
		s.Contains(rec.Body.String(), "usage_count")
	})

	s.Run("error: 404 Not Found for missing discount", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), discountID).
			Return(commands.ErrDiscountNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})
}

// ================================================================================
// TestSetStatus
// ================================================================================

func (s *DiscountHandlerTestSuite) TestSetStatus() {
	discountID := uuid.New()
	url := "/discounts/" + discountID.String() + "/status"

	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().SetStatus(gomock.Any(), discountID, "inactive").
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "inactive"})
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 400 Bad Request for unknown status value", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "archived"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 400 Bad Request for missing status", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestUsageHistory
// ================================================================================

func (s *DiscountHandlerTestSuite) TestUsageHistory() {
	discountID := uuid.New()
	url := "/discounts/" + discountID.String() + "/usages"

	usages := []*queries.UsageView{
		{ID: uuid.New(), DiscountID: discountID, OrderID: uuid.New(), CustomerID: uuid.New(), DiscountValue: 50, AppliedAt: time.Now()},
	}

	s.Run("success: returns 200 OK with usages", func() {
		s.mockQueries.EXPECT().UsageHistory(gomock.Any(), discountID, gomock.Nil(), 20).
			Return(usages, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body["usages"], 1)
	})

	s.Run("error: 404 Not Found for missing discount", func() {
		s.mockQueries.EXPECT().UsageHistory(gomock.Any(), discountID, gomock.Nil(), 20).
			Return(nil, nil, queries.ErrDiscountNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})
}

// ================================================================================
// TestEvaluate
// ================================================================================

func (s *DiscountHandlerTestSuite) TestEvaluate() {
	url := "/discounts/evaluate"
	customerID := uuid.New()

	reqBody := map[string]any{
		"code":        "SAVE10",
		"subtotal":    1000,
		"customer_id": customerID.String(),
	}

	s.Run("success: eligible result carries the computed amount", func() {
		discountID := uuid.New()
		result := &discount.EligibilityResult{
			Eligible:   true,
			DiscountID: discountID,
			Code:       "SAVE10",
			Amount:     100,
		}
		s.mockCommands.EXPECT().Evaluate(gomock.Any(), "SAVE10", gomock.Any()).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var response resdto.EligibilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.True(response.Eligible)
		s.Equal(float64(100), response.Amount)
		s.Require().NotNil(response.DiscountID)
		s.Equal(discountID, *response.DiscountID)
	})

	s.Run("success: rejection is still 200 with reason and detail", func() {
		result := &discount.EligibilityResult{
			Eligible:    false,
			Reason:      discount.ReasonBelowMinPurchase,
			Code:        "SAVE10",
			Shortfall:   200,
			MinPurchase: 500,
		}
		s.mockCommands.EXPECT().Evaluate(gomock.Any(), "SAVE10", gomock.Any()).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var response resdto.EligibilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.False(response.Eligible)
		s.Equal(string(discount.ReasonBelowMinPurchase), response.Reason)
		s.Require().NotNil(response.Shortfall)
		s.Equal(float64(200), *response.Shortfall)
		s.Nil(response.DiscountID)
		s.Nil(response.UsageLimit, "only the matching rejection detail is present")
	})

	s.Run("success: unknown code is a CODE_NOT_FOUND result", func() {
		result := discount.NotFoundResult("GHOST1")
		s.mockCommands.EXPECT().Evaluate(gomock.Any(), "GHOST1", gomock.Any()).
			Return(&result, nil).Times(1)

		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("code", "GHOST1"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body)

		var response resdto.EligibilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.False(response.Eligible)
		s.Equal(string(discount.ReasonCodeNotFound), response.Reason)
	})

	s.Run("error: 400 Bad Request on missing fields", func() {
		testCases := []testCaseDiscount{
			{name: "missing code", mutate: testutil.Field("code", nil), expectCode: http.StatusBadRequest},
			{name: "missing customer_id", mutate: testutil.Field("customer_id", nil), expectCode: http.StatusBadRequest},
			{name: "negative subtotal", mutate: testutil.Field("subtotal", -1), expectCode: http.StatusBadRequest},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
			})
		}
	})
}

// ================================================================================
// TestRedeem
// ================================================================================

func (s *DiscountHandlerTestSuite) TestRedeem() {
	url := "/discounts/redeem"
	discountID := uuid.New()

	reqBody := map[string]any{
		"discount_id":    discountID.String(),
		"order_id":       uuid.New().String(),
		"customer_id":    uuid.New().String(),
		"applied_amount": 100,
	}

	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().Redeem(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req commands.RedeemRequest) error {
				s.Equal(discountID, req.DiscountID)
				s.Equal(float64(100), req.AppliedAmount)
				return nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: maps redemption rejections to 409 Conflict", func() {
		testCases := []struct {
			name          string
			commandsError error
			expectedMsg   string
		}{
			{name: "inactive", commandsError: commands.ErrDiscountInactive, expectedMsg: "inactive"},
			{name: "usage limit reached", commandsError: commands.ErrUsageLimitReached, expectedMsg: "Usage limit reached"},
			{name: "per-customer limit reached", commandsError: commands.ErrCustomerLimitReached, expectedMsg: "Per-customer limit reached"},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Redeem(gomock.Any(), gomock.Any()).
					Return(tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, tc.expectedMsg)
			})
		}
	})

	s.Run("error: 404 Not Found for unknown discount", func() {
		s.mockCommands.EXPECT().Redeem(gomock.Any(), gomock.Any()).
			Return(commands.ErrDiscountNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})

	s.Run("error: 400 Bad Request on missing ids", func() {
		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("order_id", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestBulkCreate
// ================================================================================

func (s *DiscountHandlerTestSuite) TestBulkCreate() {
	url := "/discounts/bulk"

	item := builder.NewDiscountBuilder().BuildCreateRequestDTO()

	s.Run("success: reports per-item outcomes with totals", func() {
		createdID := uuid.New()
		result := &commands.BulkCreateResult{Items: []commands.BulkItemResult{
			{Code: "SAVE10", DiscountID: createdID, Created: true},
			{Code: "TAKEN1", Reason: "DUPLICATE_CODE", Message: "code already exists"},
		}}
		s.mockCommands.EXPECT().BulkCreate(gomock.Any(), gomock.Any()).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"discounts": []any{testutil.DtoMap(s.T(), item), testutil.DtoMap(s.T(), item, testutil.Field("code", "TAKEN1"))}})

		var response resdto.BulkCreateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(1, response.Created)
		s.Equal(1, response.Failed)
		s.Require().Len(response.Items, 2)
		s.True(response.Items[0].Created)
		s.Equal("DUPLICATE_CODE", response.Items[1].Reason)
	})

	s.Run("error: 400 with the colliding codes for intra-batch duplicates", func() {
		batchErr := &commands.BatchDuplicateError{Codes: []string{"DUP001"}}
		s.mockCommands.EXPECT().BulkCreate(gomock.Any(), gomock.Any()).
			Return(nil, batchErr).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"discounts": []any{testutil.DtoMap(s.T(), item), testutil.DtoMap(s.T(), item)}})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Duplicate codes within batch")
		s.Contains(rec.Body.String(), "DUP001")
	})

	s.Run("error: 400 Bad Request for an empty batch", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"discounts": []any{}})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestAutoGenerate
// ================================================================================

func (s *DiscountHandlerTestSuite) TestAutoGenerate() {
	url := "/discounts/auto"

	now := time.Now().UTC().Truncate(time.Second)
	reqBody := map[string]any{
		"rule":       "summer sale",
		"value":      15,
		"valid_from": now.Format(time.RFC3339),
		"valid_to":   now.Add(24 * time.Hour).Format(time.RFC3339),
	}

	s.Run("success: returns 201 Created with the generated discount", func() {
		returnView := builder.NewDiscountBuilder().WithCode("SUMMERSALE-7K2Q9").BuildView()

		s.mockCommands.EXPECT().AutoGenerate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req commands.AutoGenerateRequest) (uuid.UUID, error) {
				s.Equal("summer sale", req.Rule)
				s.Equal(float64(15), req.Value)
				return returnView.ID, nil
			}).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), returnView.ID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var response resdto.DiscountResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.True(strings.HasPrefix(response.Code, "SUMMERSALE-"))
	})

	s.Run("error: 400 Bad Request on missing rule", func() {
		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("rule", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}
