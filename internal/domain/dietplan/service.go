package dietplan

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/gemini"
)

const (
	msgDiagnosisRequired = "Diagnosis is required to generate diet plan"
	msgNotConfigured     = "Gemini API key is not configured"
	msgGenerateFailed    = "Failed to generate diet plan. Please try again."
)

// Generator produces text for a prompt. *gemini.Client satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen        Generator
	configured bool
	logger     zerolog.Logger
}

// NewService returns a Service backed by gen. When configured is false every
// request fails before reaching the upstream.
func NewService(gen Generator, configured bool, logger zerolog.Logger) *Service {
	return &Service{gen: gen, configured: configured, logger: logger}
}

// Generate asks the model for a diet plan and returns its text unmodified.
func (s *Service) Generate(ctx context.Context, r Request) (*Plan, error) {
	r.Diagnosis = strings.TrimSpace(r.Diagnosis)
	r.PatientGender = strings.TrimSpace(r.PatientGender)
	if len([]rune(r.Diagnosis)) < 2 {
		return nil, apperr.Validation(msgDiagnosisRequired)
	}
	if !s.configured || s.gen == nil {
		return nil, apperr.Upstream(msgNotConfigured, gemini.ErrNotConfigured)
	}

	text, err := s.gen.GenerateText(ctx, BuildPrompt(r))
	if err != nil {
		s.logger.Error().Err(err).Msg("diet plan generation failed")
		var apiErr *gemini.APIError
		switch {
		case errors.Is(err, gemini.ErrNotConfigured):
			return nil, apperr.Upstream(msgNotConfigured, err)
		case errors.As(err, &apiErr):
			return nil, apperr.Upstream(apiErr.Message, err)
		case err.Error() == "":
			return nil, apperr.Upstream(msgGenerateFailed, err)
		default:
			// The client strips the API key from transport errors.
			return nil, apperr.Upstream(err.Error(), err)
		}
	}
	return &Plan{DietPlan: text}, nil
}
