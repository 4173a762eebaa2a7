package dietplan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/gemini"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}

func TestService_Generate(t *testing.T) {
	gen := &fakeGenerator{text: "FOODS TO EAT:\n- Moong dal khichdi"}
	svc := NewService(gen, true, zerolog.Nop())

	plan, err := svc.Generate(context.Background(), Request{Diagnosis: "  Acidity ", PatientAge: "42", PatientGender: "female"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.DietPlan != gen.text {
		t.Errorf("expected text unmodified, got %q", plan.DietPlan)
	}
	for _, want := range []string{"Diagnosis: Acidity\n", "Patient Age: 42 years", "Patient Gender: female", "under 200 words"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gen.prompt)
		}
	}
}

func TestService_Generate_Validation(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewService(gen, true, zerolog.Nop())

	for _, diagnosis := range []string{"", " ", "a", " b "} {
		_, err := svc.Generate(context.Background(), Request{Diagnosis: diagnosis})
		if !apperr.IsValidation(err) || apperr.Message(err) != msgDiagnosisRequired {
			t.Errorf("diagnosis %q: expected validation error, got %v", diagnosis, err)
		}
	}
	if gen.calls != 0 {
		t.Errorf("expected no upstream calls, got %d", gen.calls)
	}
}

func TestService_Generate_NotConfigured(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewService(gen, false, zerolog.Nop())

	_, err := svc.Generate(context.Background(), Request{Diagnosis: "Fever"})
	if apperr.KindOf(err) != apperr.KindUpstream || apperr.Message(err) != msgNotConfigured {
		t.Errorf("expected not configured error, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("expected no upstream call")
	}
}

func TestService_Generate_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"api error", &gemini.APIError{StatusCode: 429, Message: "Resource has been exhausted"}, "Resource has been exhausted"},
		{"transport", errors.New("gemini request: dial tcp: i/o timeout"), "gemini request: dial tcp: i/o timeout"},
		{"empty error text", errors.New(""), msgGenerateFailed},
		{"no key", gemini.ErrNotConfigured, msgNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeGenerator{err: tt.err}, true, zerolog.Nop())
			_, err := svc.Generate(context.Background(), Request{Diagnosis: "Fever"})
			if apperr.KindOf(err) != apperr.KindUpstream {
				t.Fatalf("expected upstream error, got %v", err)
			}
			if apperr.Message(err) != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, apperr.Message(err))
			}
		})
	}
}

func TestService_Generate_WithGeminiClient(t *testing.T) {
	var got struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Eat light. "},{"text":"Avoid oil."}]}}]}`))
	}))
	defer srv.Close()

	client := gemini.NewClient(gemini.Config{APIKey: "test-key", BaseURL: srv.URL})
	svc := NewService(client, true, zerolog.Nop())

	plan, err := svc.Generate(context.Background(), Request{Diagnosis: "Gastritis"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.DietPlan != "Eat light. Avoid oil." {
		t.Errorf("unexpected plan %q", plan.DietPlan)
	}
	if len(got.Contents) != 1 || !strings.Contains(got.Contents[0].Parts[0].Text, "Diagnosis: Gastritis") {
		t.Errorf("unexpected request body %+v", got)
	}
}

func TestService_Generate_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := gemini.NewClient(gemini.Config{APIKey: "secret-key-123", BaseURL: base})
	svc := NewService(client, true, zerolog.Nop())

	_, err := svc.Generate(context.Background(), Request{Diagnosis: "Gastritis"})
	if apperr.KindOf(err) != apperr.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	msg := apperr.Message(err)
	if !strings.HasPrefix(msg, "gemini request:") {
		t.Errorf("expected transport error text, got %q", msg)
	}
	if strings.Contains(msg, "secret-key-123") {
		t.Errorf("api key leaked into message %q", msg)
	}
}

func TestBuildPrompt_OptionalLines(t *testing.T) {
	p := BuildPrompt(Request{Diagnosis: "Cold"})
	if strings.Contains(p, "Patient Age") || strings.Contains(p, "Patient Gender") {
		t.Errorf("expected no age or gender lines:\n%s", p)
	}
	if !strings.Contains(p, "Diagnosis: Cold\n\n\n\nProvide") {
		t.Errorf("expected blank lines in place of age and gender:\n%s", p)
	}
}

func TestAge_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Age
	}{
		{`{"patientAge":42}`, "42"},
		{`{"patientAge":"42"}`, "42"},
		{`{"patientAge":null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var r Request
		if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if r.PatientAge != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in, tt.want, r.PatientAge)
		}
	}
}
