package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// Logger writes one line per request. Errors the handler returns are logged
// with the status the error handler will give them, not echo's 200 default.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			status := v.Status
			evt := logger.Info()
			if v.Error != nil {
				evt = logger.Warn().Err(v.Error)
				var he *echo.HTTPError
				if !errors.As(v.Error, &he) {
					status = apperr.StatusOf(v.Error)
				}
			}
			if user := auth.UserIDFromContext(c.Request().Context()); user != "" {
				evt = evt.Str("user", user)
			}
			rid, _ := c.Get("request_id").(string)

			evt.Str("request_id", rid).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
