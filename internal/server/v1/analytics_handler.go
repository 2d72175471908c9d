package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/ai-usage-analyzer/internal/analytics"
	"github.com/nulzo/ai-usage-analyzer/internal/server/validator"
	"github.com/nulzo/ai-usage-analyzer/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// GetAnalytics returns the composite usage report for the trailing window.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	var q api.AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	report, err := h.service.GetAnalytics(c.Request.Context(), q.Days)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to retrieve analytics", err))
		return
	}

	c.JSON(http.StatusOK, report)
}
