package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard returns the aggregated dashboard state.
func (h *Handler) Dashboard(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	state, err := h.dashboardSvc.State(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
