package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	apperrors "github.com/yanqian/twin-dashboard/pkg/errors"
)

// Forecast generates and caches a new forecast.
func (h *Handler) Forecast(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req prediction.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	forecast, err := h.predictionSvc.Forecast(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// LatestForecast returns the cached forecast for ?mode=.
func (h *Handler) LatestForecast(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	mode, ok := queryMode(c)
	if !ok {
		return
	}
	forecast, err := h.predictionSvc.Latest(c.Request.Context(), claims.UserID, mode)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// ForecastChart renders ?metric= for ?mode= as a PNG.
func (h *Handler) ForecastChart(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	mode, ok := queryMode(c)
	if !ok {
		return
	}
	metric, valid := prediction.ParseMetric(c.DefaultQuery("metric", string(prediction.MetricHealth)))
	if !valid {
		abortWithDomainError(c, apperrors.Wrap(apperrors.CodeInvalidInput, "metric must be health, energy, cognitive or stress", nil))
		return
	}
	img, err := h.predictionSvc.Chart(c.Request.Context(), claims.UserID, mode, metric)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", img)
}

func queryMode(c *gin.Context) (prediction.Mode, bool) {
	mode, ok := prediction.ParseMode(c.DefaultQuery("mode", string(prediction.ModeTomorrow)))
	if !ok {
		abortWithDomainError(c, apperrors.Wrap(apperrors.CodeInvalidInput, "mode must be tomorrow or 7days", nil))
	}
	return mode, ok
}
