package medicine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_CreateMedicine_DateOnlyExpiry(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Pan 40","category":"Tablet","expiryDate":"2026-01-31","stockQuantity":50,"price":85}`
	req := httptest.NewRequest(http.MethodPost, "/api/medicines", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if _, ok := resp.Data["isExpired"]; !ok {
		t.Error("expected isExpired in response")
	}
	if _, ok := resp.Data["isLowStock"]; !ok {
		t.Error("expected isLowStock in response")
	}
}

func TestHandler_GetAlerts(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Create(context.Background(), input("Old", fixedNow.AddDate(0, -1, 0), 100))

	req := httptest.NewRequest(http.MethodGet, "/api/medicines/alerts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetAlerts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Data struct {
			LowStock     []json.RawMessage `json:"lowStock"`
			Expired      []json.RawMessage `json:"expired"`
			ExpiringSoon []json.RawMessage `json:"expiringSoon"`
			Counts       AlertCounts       `json:"counts"`
		} `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Data.Counts.Expired != 1 || len(resp.Data.Expired) != 1 {
		t.Errorf("expected one expired medicine, got %s", rec.Body.String())
	}
	if resp.Data.LowStock == nil || resp.Data.ExpiringSoon == nil {
		t.Errorf("expected empty arrays rather than null, got %s", rec.Body.String())
	}
}

func TestHandler_ListMedicines_ExpiredFalse(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Create(context.Background(), input("Old", fixedNow.AddDate(0, -1, 0), 100))
	h.svc.Create(context.Background(), input("New", fixedNow.AddDate(0, 6, 0), 100))

	req := httptest.NewRequest(http.MethodGet, "/api/medicines?expired=false", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListMedicines(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("expected count 1, got %s", rec.Body.String())
	}
}

func TestHandler_DeleteMedicine_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.DeleteMedicine(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound || he.Message != "Medicine not found" {
		t.Errorf("expected 404 Medicine not found, got %v", err)
	}
}
