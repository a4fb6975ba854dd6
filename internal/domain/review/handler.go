package review

import (
	"fmt"
	"log/slog"
	"net/http"

	"reviewgate/internal/common"
	"reviewgate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the review domain.
type Handler struct {
	service    *Service
	dispatcher *Dispatcher
}

// NewHandler creates a new review handler.
func NewHandler(service *Service, dispatcher *Dispatcher) *Handler {
	return &Handler{service: service, dispatcher: dispatcher}
}

// Submit handles POST /api/v1/reviews
// Stores the review and fires off its admin notification asynchronously.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	userID := middleware.UserID(c)

	rev, err := h.service.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, rev)
}

// Notify handles POST /api/v1/notifications/review
// Synchronously fans out the notification for a review the caller owns.
// The body may carry nothing but the review identifier.
func (h *Handler) Notify(c *gin.Context) {
	// Transport configuration is checked before the body is even parsed.
	if !h.dispatcher.Ready() {
		common.Error(c, http.StatusInternalServerError, "email service not configured")
		return
	}

	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "missing required field: review_id")
		return
	}

	callerID := middleware.UserID(c)

	summary, err := h.dispatcher.Dispatch(c.Request.Context(), callerID, req.ReviewID)
	if err != nil {
		slog.Error("review notification dispatch failed",
			"request_id", middleware.RequestIDFrom(c),
			"review_id", req.ReviewID,
			"caller_id", callerID,
			"error", err,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, NotifyResponse{
		Message:      fmt.Sprintf("Notifications sent to %d admin(s)", summary.SuccessCount),
		SuccessCount: summary.SuccessCount,
		FailCount:    summary.FailCount,
	})
}

// ResetGuard handles POST /api/v1/admin/guard/reset
// Clears the submission window for one identity. API-key protected.
func (h *Handler) ResetGuard(c *gin.Context) {
	var req struct {
		IdentityKey string `json:"identity_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "missing required field: identity_key")
		return
	}

	h.service.ResetGuard(c.Request.Context(), req.IdentityKey)
	common.Success(c, http.StatusOK, gin.H{"status": "reset"})
}

// RegisterRoutes registers bearer-authenticated review routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.Submit)
	rg.POST("/notifications/review", h.Notify)
}

// RegisterAdminRoutes registers API-key-authenticated admin routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/guard/reset", h.ResetGuard)
}
