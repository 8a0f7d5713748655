package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Body is the JSON shape of every error response.
type Body struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
}

// BodyOf renders err for clients. Internal errors are reduced to a generic
// message.
func BodyOf(err error) Body {
	kind := KindOf(err)
	if kind == KindInternal {
		return Body{Message: "internal error", Error: kind.String()}
	}
	b := Body{Message: err.Error(), Error: kind.String()}
	var fv *FieldValidationError
	var dup *DuplicateFieldError
	switch {
	case errors.As(err, &fv):
		b.Field = fv.Field
	case errors.As(err, &dup):
		b.Field = dup.Field
	}
	return b
}

// HTTPErrorHandler replaces echo's default error handler so typed errors
// returned from handlers are rendered through the status table.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, _ := he.Message.(string)
			if msg == "" {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, Body{Message: msg, Error: CodeForStatus(he.Code)})
			return
		}

		status := StatusOf(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}
		_ = c.JSON(status, BodyOf(err))
	}
}
