package appointment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sariva/clinic/internal/platform/auth"
	"github.com/sariva/clinic/internal/platform/httpx"
	"github.com/sariva/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /appointments for every signed-in role.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/appointments", auth.RequireRole(auth.AllRoles...))
	g.GET("", h.ListAppointments)
	g.GET("/today", h.TodayAppointments)
	g.GET("/:id", h.GetAppointment)
	g.POST("", h.CreateAppointment)
	g.PUT("/:id", h.UpdateAppointment)
	g.DELETE("/:id", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), ListQuery{
		Patient:   c.QueryParam("patient"),
		Doctor:    c.QueryParam("doctor"),
		Status:    c.QueryParam("status"),
		Date:      c.QueryParam("date"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	}, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, len(items), total, pg))
}

func (h *Handler) TodayAppointments(c echo.Context) error {
	items, err := h.svc.Today(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.List(c, items, len(items))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	a, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Appointment deleted successfully")
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	}
	return id, nil
}
