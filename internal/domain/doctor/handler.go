package doctor

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

// RegisterRoutes mounts /doctors. Reads are open to every role, writes are
// admin-only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/doctors", auth.RequireRole(auth.AllRoles...))
	admin := auth.RequireRole(auth.RoleAdmin)
	g.GET("", h.ListDoctors)
	g.GET("/:id", h.GetDoctor)
	g.POST("", h.CreateDoctor, admin)
	g.PUT("/:id", h.UpdateDoctor, admin)
	g.DELETE("/:id", h.DeleteDoctor, admin)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), ListFilter{
		Search:         c.QueryParam("search"),
		Specialization: c.QueryParam("specialization"),
		Active:         c.QueryParam("active"),
	})
	if err != nil {
		return err
	}
	return httpx.List(c, items, len(items))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Doctor deleted successfully")
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	}
	return id, nil
}
