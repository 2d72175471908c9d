package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/ai-usage-analyzer/internal/events"
	"github.com/nulzo/ai-usage-analyzer/internal/server/validator"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
	"github.com/nulzo/ai-usage-analyzer/pkg/api"
)

type EventsHandler struct {
	service events.Service
}

func NewEventsHandler(service events.Service) *EventsHandler {
	return &EventsHandler{
		service: service,
	}
}

// CreateEvent ingests a single usage event.
func (h *EventsHandler) CreateEvent(c *gin.Context) {
	var req api.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	event, err := h.service.Create(c.Request.Context(), toSubmission(req))
	if err != nil {
		failEvent(c, err, "Failed to create usage event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEventBatch ingests many usage events in one request. Output order
// matches input order. The batch is all-or-nothing.
func (h *EventsHandler) CreateEventBatch(c *gin.Context) {
	var req api.CreateEventBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	subs := make([]events.Submission, 0, len(req.Events))
	for _, e := range req.Events {
		subs = append(subs, toSubmission(e))
	}

	created, err := h.service.CreateBatch(c.Request.Context(), subs)
	if err != nil {
		failEvent(c, err, "Failed to create batch usage events")
		return
	}

	c.JSON(http.StatusOK, created)
}

// ListEvents returns a filtered page of events, newest first.
func (h *EventsHandler) ListEvents(c *gin.Context) {
	var q api.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	filter := model.EventFilter{
		Provider: q.Provider,
		Model:    q.Model,
		UserID:   q.UserID,
		Service:  q.Service,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if !q.Start.IsZero() {
		start := q.Start
		filter.Start = &start
	}
	if !q.End.IsZero() {
		end := q.End
		filter.End = &end
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to retrieve usage events", err))
		return
	}

	c.JSON(http.StatusOK, page)
}

func toSubmission(req api.CreateEventRequest) events.Submission {
	return events.Submission{
		Provider:         model.Provider(req.Provider),
		Model:            req.Model,
		EventType:        model.EventType(req.EventType),
		UserID:           req.UserID,
		Service:          req.Service,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
		TotalTokens:      req.TotalTokens,
		CostUSD:          req.CostUSD,
		Prompt:           req.Prompt,
		Response:         req.Response,
		Metadata:         req.Metadata,
	}
}

func failEvent(c *gin.Context, err error, msg string) {
	var invalid *events.InvalidEventError
	if errors.As(err, &invalid) {
		_ = c.Error(api.ValidationError(invalid.Fields))
		return
	}
	_ = c.Error(api.InternalError(msg, err))
}
