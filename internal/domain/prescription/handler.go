package prescription

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

// RegisterRoutes mounts /prescriptions and the patient history route
// /patients/:id/prescriptions.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/prescriptions", auth.RequireRole(auth.AllRoles...))
	g.GET("", h.ListPrescriptions)
	g.GET("/:id", h.GetPrescription)
	g.POST("", h.CreatePrescription)
	g.PUT("/:id", h.UpdatePrescription)
	g.DELETE("/:id", h.DeletePrescription)

	api.GET("/patients/:id/prescriptions", h.PatientPrescriptions, auth.RequireRole(auth.AllRoles...))
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), ListQuery{
		Patient:   c.QueryParam("patient"),
		Doctor:    c.QueryParam("doctor"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	}, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, len(items), total, pg))
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, d)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, d)
}

func (h *Handler) UpdatePrescription(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, d)
}

func (h *Handler) DeletePrescription(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Prescription deleted successfully")
}

func (h *Handler) PatientPrescriptions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	items, err := h.svc.ForPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.List(c, items, len(items))
}

// ParseID reads the :id path parameter of a prescription route.
func ParseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Prescription not found")
	}
	return id, nil
}
