package handler

import (
	"net/http"

	"tradeportal_backend/internal/orders/service"
	"tradeportal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// PublicHandler handles unauthenticated requests for shared quotations.
type PublicHandler struct {
	svc *service.Service
}

// NewPublicHandler creates a new public orders handler.
func NewPublicHandler(svc *service.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// RegisterRoutes registers the public order routes (no auth middleware).
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token", h.GetSharedOrder)
	rg.GET("/:token/qr", h.GetShareQRCode)
}

// GetSharedOrder handles GET /api/v1/public/orders/:token
func (h *PublicHandler) GetSharedOrder(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, "token is required", nil)
		return
	}

	result, err := h.svc.GetSharedOrder(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetShareQRCode handles GET /api/v1/public/orders/:token/qr
func (h *PublicHandler) GetShareQRCode(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, "token is required", nil)
		return
	}

	png, err := h.svc.ShareQRCode(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
