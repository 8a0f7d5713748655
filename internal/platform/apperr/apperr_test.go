package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &FieldValidationError{Field: "username", Reason: "required"}, http.StatusBadRequest},
		{"duplicate", &DuplicateFieldError{Field: "email"}, http.StatusBadRequest},
		{"reference", &ReferenceNotFoundError{Ref: "specialization", ID: "9"}, http.StatusBadRequest},
		{"not found", &NotFoundError{Resource: "person", ID: "x"}, http.StatusNotFound},
		{"unauthorized", &UnauthorizedError{Message: "invalid credentials"}, http.StatusUnauthorized},
		{"forbidden", &ForbiddenError{Message: "not your appointment"}, http.StatusForbidden},
		{"storage", &StorageError{Message: "insert person"}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped duplicate", fmt.Errorf("register: %w", &DuplicateFieldError{Field: "username"}), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestStorage_PassesTypedErrorsThrough(t *testing.T) {
	dup := &DuplicateFieldError{Field: "username"}
	assert.Same(t, dup, Storage("insert person", dup))
	assert.Nil(t, Storage("insert person", nil))

	wrapped := Storage("insert person", errors.New("conn reset"))
	var se *StorageError
	require.ErrorAs(t, wrapped, &se)
	assert.Equal(t, "insert person", se.Message)
}

func TestBodyOf_HidesStorageDetail(t *testing.T) {
	b := BodyOf(&StorageError{Message: "insert person", Err: errors.New("password=secret")})
	assert.Equal(t, "internal error", b.Message)
	assert.Equal(t, "internal_error", b.Error)
}

func TestBodyOf_CarriesField(t *testing.T) {
	b := BodyOf(&DuplicateFieldError{Field: "username"})
	assert.Equal(t, "username", b.Field)
	assert.Equal(t, "duplicate_field", b.Error)
	assert.Equal(t, "username already exists", b.Message)
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.New(os.Stderr))

	req := httptest.NewRequest(http.MethodPost, "/register/patient", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(&FieldValidationError{Field: "mobile_number", Reason: "must be exactly 9 digits"}, c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "mobile_number", body.Field)
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), c)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error)
}

func TestHTTPErrorHandler_EchoErrorUsesKindNames(t *testing.T) {
	tests := []struct {
		status int
		want   string
		typed  error
	}{
		{http.StatusBadRequest, "validation_error", &FieldValidationError{Field: "email", Reason: "is required"}},
		{http.StatusUnauthorized, "unauthorized", &UnauthorizedError{Message: "invalid token"}},
		{http.StatusForbidden, "forbidden", &ForbiddenError{Message: "not yours"}},
		{http.StatusNotFound, "not_found", &NotFoundError{Resource: "person", ID: "ghost"}},
		{http.StatusInternalServerError, "internal_error", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = HTTPErrorHandler(zerolog.Nop())
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/register/patient", nil), rec)

			e.HTTPErrorHandler(echo.NewHTTPError(tt.status, "invalid request body"), c)

			require.Equal(t, tt.status, rec.Code)
			var body Body
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Error)
			// Same token a typed error of that status renders.
			assert.Equal(t, BodyOf(tt.typed).Error, body.Error)
		})
	}
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "payload_too_large", CodeForStatus(http.StatusRequestEntityTooLarge))
	assert.Equal(t, "timeout", CodeForStatus(http.StatusGatewayTimeout))
	assert.Equal(t, "unavailable", CodeForStatus(http.StatusServiceUnavailable))
	assert.Equal(t, "internal_error", CodeForStatus(http.StatusBadGateway))
	assert.Equal(t, "request_error", CodeForStatus(http.StatusTeapot))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "duplicate_field", KindDuplicate.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
