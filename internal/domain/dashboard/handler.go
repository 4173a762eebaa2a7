package dashboard

import (
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
	api.GET("/dashboard/stats", h.GetStats, auth.RequireRole(auth.AllRoles...))
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, stats)
}
