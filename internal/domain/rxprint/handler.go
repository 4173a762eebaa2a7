package rxprint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sariva/clinic/internal/domain/clinicsettings"
	"github.com/sariva/clinic/internal/domain/prescription"
	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/auth"
	"github.com/sariva/clinic/internal/platform/httpx"
	"github.com/sariva/clinic/internal/platform/mail"
)

type PrescriptionReader interface {
	Get(ctx context.Context, id uuid.UUID) (*prescription.Detail, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (*clinicsettings.Settings, error)
}

type Handler struct {
	rx       PrescriptionReader
	settings SettingsReader
	mailer   mail.Sender
	loc      *time.Location
	logger   zerolog.Logger
}

func NewHandler(rx PrescriptionReader, settings SettingsReader, mailer mail.Sender, loc *time.Location, logger zerolog.Logger) *Handler {
	return &Handler{rx: rx, settings: settings, mailer: mailer, loc: loc, logger: logger}
}

// RegisterRoutes mounts the print routes under /prescriptions.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/prescriptions", auth.RequireRole(auth.AllRoles...))
	g.GET("/templates", h.ListTemplates)
	g.GET("/:id/print", h.PrintPrescription)
	g.POST("/:id/email", h.EmailPrescription)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	items := Templates()
	return httpx.List(c, items, len(items))
}

func (h *Handler) PrintPrescription(c echo.Context) error {
	id, err := prescription.ParseID(c)
	if err != nil {
		return err
	}
	doc, err := h.document(c.Request().Context(), id)
	if err != nil {
		return err
	}
	page, err := Render(c.QueryParam("template"), doc)
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

type emailRequest struct {
	Template string `json:"template"`
}

func (h *Handler) EmailPrescription(c echo.Context) error {
	id, err := prescription.ParseID(c)
	if err != nil {
		return err
	}
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	doc, err := h.document(ctx, id)
	if err != nil {
		return err
	}
	to := strings.TrimSpace(doc.Patient.Email)
	if to == "" {
		return apperr.Validation("Patient has no email address")
	}
	page, err := Render(req.Template, doc)
	if err != nil {
		return err
	}

	err = h.mailer.Send(ctx, mail.Message{
		To:       to,
		Subject:  fmt.Sprintf("Prescription %s from %s", doc.PrescriptionID, doc.Clinic.Name),
		HTMLBody: string(page),
	})
	if errors.Is(err, mail.ErrDisabled) {
		return apperr.Upstream("Email delivery is not configured", err)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("prescription_id", doc.PrescriptionID).Msg("prescription email failed")
		return apperr.Upstream("Failed to send prescription email", err)
	}

	h.logger.Info().
		Str("prescription_id", doc.PrescriptionID).
		Str("template", Lookup(req.Template).ID).
		Msg("prescription emailed")
	return httpx.Message(c, "Prescription sent to "+to)
}

func (h *Handler) document(ctx context.Context, id uuid.UUID) (Document, error) {
	d, err := h.rx.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	s, err := h.settings.Get(ctx)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(d, s, h.loc), nil
}
