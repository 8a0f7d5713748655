package registration

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the registration endpoints. They are public: a
// registration is how an account comes to exist.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/register/patient", h.RegisterPatient)
	g.POST("/register/assistant", h.RegisterAssistant)
	g.POST("/register/nurse", h.RegisterNurse)
	g.POST("/register/doctor", h.RegisterDoctor)
	g.GET("/specializations", h.ListSpecializations)
}

type registeredResponse struct {
	Message    string `json:"message"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	ContractID *int64 `json:"contract_id,omitempty"`
}

func created(c echo.Context, res *Result) error {
	return c.JSON(http.StatusCreated, registeredResponse{
		Message:    string(res.Role) + " registered",
		Username:   res.Username,
		Role:       res.Role,
		ContractID: res.ContractID,
	})
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.RegisterPatient(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return created(c, res)
}

func (h *Handler) RegisterAssistant(c echo.Context) error {
	var req AssistantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.RegisterAssistant(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return created(c, res)
}

func (h *Handler) RegisterNurse(c echo.Context) error {
	var req NurseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.RegisterNurse(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return created(c, res)
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req DoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.RegisterDoctor(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return created(c, res)
}

func (h *Handler) ListSpecializations(c echo.Context) error {
	items, err := h.svc.ListSpecializations(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Specialization{}
	}
	return c.JSON(http.StatusOK, items)
}
