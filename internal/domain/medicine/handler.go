package medicine

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sariva/clinic/internal/platform/auth"
	"github.com/sariva/clinic/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /medicines. Writes are admin-only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medicines", auth.RequireRole(auth.AllRoles...))
	admin := auth.RequireRole(auth.RoleAdmin)
	g.GET("", h.ListMedicines)
	g.GET("/alerts", h.GetAlerts)
	g.GET("/:id", h.GetMedicine)
	g.POST("", h.CreateMedicine, admin)
	g.PUT("/:id", h.UpdateMedicine, admin)
	g.DELETE("/:id", h.DeleteMedicine, admin)
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	m, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, m)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, m)
}

func (h *Handler) ListMedicines(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), ListFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Active:   c.QueryParam("active"),
	}, c.QueryParam("expired") == "false")
	if err != nil {
		return err
	}
	return httpx.List(c, items, len(items))
}

func (h *Handler) GetAlerts(c echo.Context) error {
	alerts, err := h.svc.Alerts(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, alerts)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	m, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, m)
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Medicine deleted successfully")
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Medicine not found")
	}
	return id, nil
}
