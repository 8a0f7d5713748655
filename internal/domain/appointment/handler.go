package appointment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Schedule, auth.RequireRole(auth.RolePatient, auth.RoleAssistant))
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
}

func callerOf(c echo.Context) Caller {
	ctx := c.Request().Context()
	return Caller{Username: auth.UserIDFromContext(ctx), Roles: auth.RolesFromContext(ctx)}
}

type scheduledResponse struct {
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	AppointmentID uuid.UUID    `json:"appointment_id"`
	Appointment   *Appointment `json:"appointment"`
}

func (h *Handler) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Schedule(c.Request().Context(), &req, callerOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, scheduledResponse{
		Status:        "success",
		Message:       "Appointment scheduled",
		AppointmentID: a.ID,
		Appointment:   a,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id, callerOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{Patient: c.QueryParam("patient"), Doctor: c.QueryParam("doctor")}
	items, total, err := h.svc.List(c.Request().Context(), f, callerOf(c), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithNext(c.Request().URL))
}
