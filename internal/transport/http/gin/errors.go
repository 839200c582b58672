package httpgin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tix-events/internal/service/lifecycle"
)

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// respondErr maps lifecycle errors to status codes. Anything unrecognised is
// recorded on the context for the logging middleware and answered with 500.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		verr lifecycle.ValidationError
		cerr lifecycle.ConflictError
	)

	switch {
	case errors.Is(err, lifecycle.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error()})
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: cerr.Reason})
	case errors.Is(err, lifecycle.ErrUnauthenticated):
		c.Header("WWW-Authenticate", `Bearer realm="tixevents"`)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "organizer role required"})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
