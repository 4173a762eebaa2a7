package reference

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

// RegisterRoutes mounts the list under its kind's path. Writes are
// admin-only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/"+h.svc.Kind().Path, auth.RequireRole(auth.AllRoles...))
	admin := auth.RequireRole(auth.RoleAdmin)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.DELETE("/:id", h.Delete, admin)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	it, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, it)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := h.parseID(c)
	if err != nil {
		return err
	}
	it, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, it)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), ListFilter{
		Search: c.QueryParam("search"),
		Active: c.QueryParam("active"),
	})
	if err != nil {
		return err
	}
	return httpx.List(c, items, len(items))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := h.parseID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	it, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, it)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := h.parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, h.svc.Kind().Label+" deleted successfully")
}

func (h *Handler) parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, h.svc.Kind().notFoundMsg())
	}
	return id, nil
}
