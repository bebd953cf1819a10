package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dominopro/dominopro-server/internal/domain"
)

const defaultTimeout = 10 * time.Second

// failurePrefix starts the text shown when generation fails.
const failurePrefix = "No se pudo generar el resumen: "

// Service runs a Generator for the current league and never fails:
// errors become user-visible text.
type Service struct {
	generator Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService wraps generator with a timeout.
func NewService(generator Generator, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{generator: generator, timeout: timeout, logger: logger}
}

// Summarize builds the digest of state and asks the generator for a recap.
func (s *Service) Summarize(ctx context.Context, state *domain.LeagueState) string {
	d := NewDigest(state)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.generate(ctx, d)
		done <- result{text, err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = ctx.Err()
	}
	text, err := r.text, r.err
	if err != nil {
		s.logger.Warn("summary generation failed", slog.String("error", err.Error()))
		return failurePrefix + err.Error()
	}
	return text
}

func (s *Service) generate(ctx context.Context, d Digest) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return s.generator.Generate(ctx, d)
}
