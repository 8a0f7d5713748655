package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func hit(e *echo.Echo, h echo.HandlerFunc, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register/patient", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if user != "" {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, user))
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func TestRateLimit_RequestsWithinBurst(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec := hit(e, handler, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		if rec := hit(e, handler, ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := hit(e, handler, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retry < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_PerUserIsolation(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	if rec := hit(e, handler, "pat01"); rec.Code != http.StatusOK {
		t.Fatalf("pat01 first request: expected 200, got %d", rec.Code)
	}
	if rec := hit(e, handler, "PAT01"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("PAT01 shares pat01's bucket: expected 429, got %d", rec.Code)
	}
	if rec := hit(e, handler, "pat02"); rec.Code != http.StatusOK {
		t.Fatalf("pat02 first request: expected 200, got %d", rec.Code)
	}
	// Same IP, but anonymous traffic is keyed separately from users.
	if rec := hit(e, handler, ""); rec.Code != http.StatusOK {
		t.Fatalf("anonymous request: expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_ZeroRateUsesDefaults(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{})(okHandler)

	rec := hit(e, handler, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "50" {
		t.Errorf("expected default limit 50, got %q", got)
	}
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 50 {
		t.Errorf("expected RequestsPerSecond 50, got %f", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 100 {
		t.Errorf("expected BurstSize 100, got %d", cfg.BurstSize)
	}
}
