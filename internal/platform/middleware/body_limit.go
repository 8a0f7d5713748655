package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
)

// DefaultBodyLimit is far above any registration payload.
const DefaultBodyLimit = "1M"

// BodyLimit rejects request bodies larger than limit ("64K", "1M", "1MB" or
// a byte count) with 413, whether or not Content-Length is honest. An
// unparseable limit falls back to DefaultBodyLimit.
func BodyLimit(limit string) echo.MiddlewareFunc {
	if n, err := bytes.Parse(limit); err != nil || n <= 0 {
		limit = DefaultBodyLimit
	}
	return echomw.BodyLimit(limit)
}
