package handler

import (
	"context"
	"net/http"
	"strconv"

	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/service"
	"tradeportal_backend/internal/orders/transport"
	"tradeportal_backend/platform/httpkit"
	"tradeportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	idempotencyKeyHeader = "Idempotency-Key"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new orders handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the order routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/revisions", h.ListRevisions)

	rg.POST("/:id/items", h.AddItem)
	rg.DELETE("/:id/items/:lineNumber", h.RemoveItem)
	rg.PATCH("/:id/items/:lineNumber/quantity", h.ChangeQuantity)
	rg.POST("/:id/discounts", h.AddCartDiscount)
	rg.DELETE("/:id/discounts/:discountId", h.RemoveCartDiscount)
	rg.POST("/:id/adjustments", h.ApplyLineAdjustment)
	rg.PUT("/:id/shipping", h.SetShipping)

	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/revise", h.Revise)
	rg.POST("/:id/counter", h.Counter)

	rg.POST("/:id/share", h.CreateShareLink)
}

// List handles GET /api/v1/orders
func (h *Handler) List(c *gin.Context) {
	var req transport.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.ListOrders(c.Request.Context(), tenantID, actor, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Create handles POST /api/v1/orders
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.CreateDraft(c.Request.Context(), tenantID, actor, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

// GetByID handles GET /api/v1/orders/:id
func (h *Handler) GetByID(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.GetOrder(c.Request.Context(), tenantID, actor, orderID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ListRevisions handles GET /api/v1/orders/:id/revisions
func (h *Handler) ListRevisions(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	revisions, err := h.svc.ListRevisions(c.Request.Context(), tenantID, actor, orderID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, revisions)
}

// AddItem handles POST /api/v1/orders/:id/items
func (h *Handler) AddItem(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.NewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.AddOrderItem(c.Request.Context(), tenantID, actor, orderID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// RemoveItem handles DELETE /api/v1/orders/:id/items/:lineNumber
func (h *Handler) RemoveItem(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	lineNumber, ok := lineNumberParam(c)
	if !ok {
		return
	}
	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.RemoveOrderItem(c.Request.Context(), tenantID, actor, orderID, lineNumber)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ChangeQuantity handles PATCH /api/v1/orders/:id/items/:lineNumber/quantity
func (h *Handler) ChangeQuantity(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	lineNumber, ok := lineNumberParam(c)
	if !ok {
		return
	}

	var req transport.ChangeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.ChangeItemQuantity(c.Request.Context(), tenantID, actor, orderID, lineNumber, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// AddCartDiscount handles POST /api/v1/orders/:id/discounts
func (h *Handler) AddCartDiscount(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.CartDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.AddCartDiscount(c.Request.Context(), tenantID, actor, orderID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// RemoveCartDiscount handles DELETE /api/v1/orders/:id/discounts/:discountId
func (h *Handler) RemoveCartDiscount(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	discountID, err := uuid.Parse(c.Param("discountId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid discount ID", nil)
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.RemoveCartDiscount(c.Request.Context(), tenantID, actor, orderID, discountID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ApplyLineAdjustment handles POST /api/v1/orders/:id/adjustments
func (h *Handler) ApplyLineAdjustment(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.LineAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.ApplyLineAdjustment(c.Request.Context(), tenantID, actor, orderID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// SetShipping handles PUT /api/v1/orders/:id/shipping
func (h *Handler) SetShipping(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.SetShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.SetShippingCost(c.Request.Context(), tenantID, actor, orderID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Send handles POST /api/v1/orders/:id/send
func (h *Handler) Send(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.SendQuotationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.SendQuotation(c.Request.Context(), tenantID, actor, orderID, req, c.GetHeader(idempotencyKeyHeader))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Accept handles POST /api/v1/orders/:id/accept
func (h *Handler) Accept(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.AcceptQuotation(c.Request.Context(), tenantID, actor, orderID, c.GetHeader(idempotencyKeyHeader))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Reject handles POST /api/v1/orders/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.RejectQuotationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.RejectQuotation(c.Request.Context(), tenantID, actor, orderID, req, c.GetHeader(idempotencyKeyHeader))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Revise handles POST /api/v1/orders/:id/revise
func (h *Handler) Revise(c *gin.Context) {
	h.negotiationRound(c, h.svc.ReviseQuotation)
}

// Counter handles POST /api/v1/orders/:id/counter
func (h *Handler) Counter(c *gin.Context) {
	h.negotiationRound(c, h.svc.CounterQuotation)
}

// CreateShareLink handles POST /api/v1/orders/:id/share
func (h *Handler) CreateShareLink(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := h.svc.CreateShareLink(c.Request.Context(), tenantID, actor, orderID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

type roundFunc func(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.RevisionDeltaRequest, idempotencyKey string) (*transport.OrderResponse, error)

func (h *Handler) negotiationRound(c *gin.Context, round roundFunc) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req transport.RevisionDeltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, actor, ok := callerContext(c)
	if !ok {
		return
	}

	result, err := round(c.Request.Context(), tenantID, actor, orderID, req, c.GetHeader(idempotencyKeyHeader))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, false
	}
	return orderID, true
}

func lineNumberParam(c *gin.Context) (int, bool) {
	lineNumber, err := strconv.Atoi(c.Param("lineNumber"))
	if err != nil || lineNumber < 1 {
		httpkit.Error(c, http.StatusBadRequest, "invalid line number", nil)
		return 0, false
	}
	return lineNumber, true
}

// callerContext extracts the tenant and the acting party from the request.
func callerContext(c *gin.Context) (uuid.UUID, domain.Actor, bool) {
	identity := httpkit.GetIdentity(c)

	tenantID := identity.TenantID()
	if tenantID == uuid.Nil {
		httpkit.Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		return uuid.UUID{}, domain.Actor{}, false
	}

	actor := domain.Actor{ID: identity.UserID(), Name: identity.UserName()}
	switch {
	case identity.HasRole(string(domain.RoleSales)):
		actor.Role = domain.RoleSales
	case identity.HasRole(string(domain.RoleCustomer)):
		actor.Role = domain.RoleCustomer
	default:
		if roles := identity.Roles(); len(roles) > 0 {
			actor.Role = domain.Role(roles[0])
		}
	}

	return tenantID, actor, true
}

// bindOptionalJSON binds the body when one was sent; an empty body is fine
// for actions whose fields are all optional.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
