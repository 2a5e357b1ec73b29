package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
)

// UploadHealth stores one device sample for the caller.
func (h *Handler) UploadHealth(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var sample healthdata.Sample
	if err := c.ShouldBindJSON(&sample); err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.healthSvc.Upload(c.Request.Context(), claims.UserID, sample)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "health data uploaded",
		"sync_id": record.ID,
		"record":  record,
	})
}

// ListHealth returns the caller's uploads, newest first.
func (h *Handler) ListHealth(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		limit = parsed
	}
	records, err := h.healthSvc.List(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// LatestHealth returns the most recent upload.
func (h *Handler) LatestHealth(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	record, err := h.healthSvc.Latest(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// RawHealth streams the stored upload payload back.
func (h *Handler) RawHealth(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	payload, err := h.healthSvc.Raw(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}
