package captcha

import (
	"log/slog"
	"net/http"

	"reviewgate/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles captcha verification requests.
type Handler struct {
	verifier  Verifier
	threshold float64
}

// NewHandler creates a new captcha handler. Tokens scoring below threshold
// are rejected even when Google reports success (0.0 likely bot, 1.0 likely
// human).
func NewHandler(verifier Verifier, threshold float64) *Handler {
	return &Handler{verifier: verifier, threshold: threshold}
}

// Verify handles POST /api/v1/captcha/verify
func (h *Handler) Verify(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		common.Error(c, http.StatusBadRequest, "no token provided")
		return
	}

	if !h.verifier.Configured() {
		slog.Error("captcha secret key not configured")
		common.Error(c, http.StatusInternalServerError, "server configuration error")
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), req.Token)
	if err != nil {
		slog.Error("captcha verification failed", "error", err)
		common.Error(c, http.StatusInternalServerError, "internal server error")
		return
	}

	switch {
	case result.Success && result.Score >= h.threshold:
		common.Success(c, http.StatusOK, gin.H{"score": result.Score})
	case result.Success:
		slog.Warn("captcha score below threshold", "score", result.Score, "threshold", h.threshold)
		common.Error(c, http.StatusBadRequest, "low confidence score")
	default:
		slog.Warn("captcha verification rejected", "codes", result.ErrorCodes)
		common.Error(c, http.StatusBadRequest, "verification failed")
	}
}

// RegisterRoutes registers captcha routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/captcha/verify", h.Verify)
}
