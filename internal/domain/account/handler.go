package account

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts login on the public group and the lookups on the
// authenticated api group.
func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	public.POST("/login", h.Login)

	api.GET("/me", h.Me)
	api.GET("/persons/:username", h.GetPerson)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	token, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, token)
}

func (h *Handler) Me(c echo.Context) error {
	user := auth.UserIDFromContext(c.Request().Context())
	if user == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	acct, err := h.svc.Get(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}

// GetPerson lets staff look up anyone. Patients may only look up themselves.
func (h *Handler) GetPerson(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")

	if !auth.HasRole(auth.RolesFromContext(ctx), auth.RoleAssistant, auth.RoleNurse, auth.RoleDoctor) &&
		!strings.EqualFold(username, auth.UserIDFromContext(ctx)) {
		return &apperr.ForbiddenError{Message: "patients may only view their own record"}
	}

	acct, err := h.svc.Get(ctx, username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}
