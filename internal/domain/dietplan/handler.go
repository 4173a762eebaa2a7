package dietplan

import (
	"net/http"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/ai/diet-plan", h.GenerateDietPlan, auth.RequireRole(auth.AllRoles...))
}

func (h *Handler) GenerateDietPlan(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	plan, err := h.svc.Generate(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return httpx.OK(c, plan)
}
