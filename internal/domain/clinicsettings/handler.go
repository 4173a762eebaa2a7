package clinicsettings

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

// RegisterRoutes mounts /clinic-settings. GET is public so the login page
// can show the clinic name.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/clinic-settings", h.GetSettings)
	api.PUT("/clinic-settings", h.UpdateSettings, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) GetSettings(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, s)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	s, err := h.svc.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.OK(c, s)
}
