package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/ai-usage-analyzer/internal/events"
	"github.com/nulzo/ai-usage-analyzer/internal/server/middleware"
	"github.com/nulzo/ai-usage-analyzer/internal/server/validator"
	"github.com/nulzo/ai-usage-analyzer/pkg/api"
)

type DemoHandler struct {
	service events.Service
}

func NewDemoHandler(service events.Service) *DemoHandler {
	return &DemoHandler{
		service: service,
	}
}

// GenerateDemoData backfills synthetic usage events for dashboards and
// local development.
func (h *DemoHandler) GenerateDemoData(c *gin.Context) {
	var q api.DemoDataQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	actor := middleware.IdentityFrom(c)

	count, err := h.service.GenerateDemo(c.Request.Context(), q.Count, actor)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to generate demo data", err))
		return
	}

	c.JSON(http.StatusOK, api.DemoDataResponse{
		Message: fmt.Sprintf("Generated %d demo events", count),
		Count:   count,
	})
}
