package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ErrorHandler renders the last error a handler attached with c.Error and
// turns panics into a 500. Upstream payloads never reach the client.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic while handling request", "path", c.FullPath(), "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, resp := Describe(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
		} else {
			logger.Warn("request rejected", "path", c.FullPath(), "status", status, "error", err)
		}
		c.JSON(status, resp)
	}
}

// Describe maps an error to the status and body the client sees
func Describe(err error) (int, ErrorResponse) {
	var (
		dispatchErr *pipeline.DispatchError
		failedErr   *pipeline.ExecutionFailedError
		timeoutErr  *pipeline.TimeoutError
		normErr     *normalize.NormalizationError
	)
	switch {
	case errors.As(err, &dispatchErr):
		return http.StatusBadGateway, ErrorResponse{Error: "could not start pipeline", Kind: string(dispatchErr.Kind)}
	case errors.As(err, &failedErr):
		return http.StatusBadGateway, ErrorResponse{Error: "pipeline failed"}
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "taking too long, try again"}
	case errors.As(err, &normErr):
		return http.StatusBadGateway, ErrorResponse{Error: "pipeline returned an unusable result", Kind: string(normErr.Shape)}
	case errors.Is(err, pipeline.ErrRunInProgress):
		return http.StatusConflict, ErrorResponse{Error: "a run of this pipeline is already in progress"}
	case errors.Is(err, pipeline.ErrMissingUserID):
		return http.StatusBadRequest, ErrorResponse{Error: "user id is required"}
	case errors.Is(err, pipeline.ErrEngineNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "workflow engine is not configured"}
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "item not found"}
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, context.Canceled):
		return 499, ErrorResponse{Error: "request canceled"}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}
