package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hms/hms/internal/platform/apperr"
)

// RequestTimeout puts a deadline on each request context. Database calls
// observe it, so a registration that overruns rolls back, and the error that
// surfaces is answered with 504. Zero disables the deadline.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	if timeout <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
		Timeout: timeout,
		ErrorHandler: func(err error, c echo.Context) error {
			if !errors.Is(err, context.DeadlineExceeded) || c.Response().Committed {
				return err
			}
			return c.JSON(http.StatusGatewayTimeout, apperr.Body{
				Message: "request processing exceeded the allowed time limit",
				Error:   apperr.CodeForStatus(http.StatusGatewayTimeout),
			})
		},
	})
}
