package api

import (
	"context"
	"log/slog"
	"math"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

func (s *Server) registerSummaryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generateSummary",
		Method:      http.MethodPost,
		Path:        "/api/v1/summary",
		Summary:     "Generate league summary",
		Description: "Writes a short, playful recap of the standings. Rate limited per client.",
		Tags:        []string{"League"},
	}, s.handleGenerateSummary)
}

// SummaryResponse contains the generated text.
type SummaryResponse struct {
	Summary string `json:"summary" doc:"Generated recap, or an explanation of why it failed"`
}

// SummaryOutput wraps the summary for Huma.
type SummaryOutput struct {
	Body SummaryResponse
}

func (s *Server) handleGenerateSummary(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
	if s.services.Summary == nil {
		return nil, huma.Error503ServiceUnavailable("summary is not available")
	}

	ip := clientIP(ctx)
	if !s.summaryLimiter.Allow(ip) {
		wait := s.summaryLimiter.RetryAfter(ip)
		s.logger.Warn("summary rate limit exceeded", slog.String("ip", ip))
		return nil, toHumaError(domainerrors.RateLimited("too many summary requests").
			WithDetails(map[string]int{"retryAfterSeconds": int(math.Ceil(wait.Seconds()))}))
	}

	text := s.services.Summary.Summarize(ctx, s.services.League.Snapshot())
	return &SummaryOutput{Body: SummaryResponse{Summary: text}}, nil
}
