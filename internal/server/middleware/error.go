package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/pkg/api"
)

// ErrorHandler converts errors attached by handlers into RFC 9457 problem
// responses. Store and archive internals are logged, never leaked to the
// caller.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*api.Problem); ok {
			if problem.Log != nil {
				logger.Error("Request failed", zap.Error(problem.Log))
			}

			// RFC 9457 dictates the json is at the root
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		if apiErr, ok := err.(*api.Error); ok {
			if apiErr.Log != nil {
				logger.Error("Request failed", zap.Error(apiErr.Log))
			}

			c.JSON(apiErr.Code, api.NewProblem(apiErr.Code, http.StatusText(apiErr.Code), apiErr.Message))
			c.Abort()
			return
		}

		// unknown error, catch-all 500
		logger.Error("Unhandled error", zap.Error(err))

		c.JSON(http.StatusInternalServerError, api.NewProblem(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))

		c.Abort()
	}
}
