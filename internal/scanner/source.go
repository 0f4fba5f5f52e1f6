package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

// RegistrySource implements PaperSource by delegating to a registered
// strategy.
type RegistrySource struct {
	registry *Registry
	name     string
	logger   *slog.Logger
}

var _ ports.PaperSource = (*RegistrySource)(nil)

// NewRegistrySource binds a registry to the strategy it should execute.
func NewRegistrySource(reg *Registry, name string, log *slog.Logger) *RegistrySource {
	return &RegistrySource{registry: reg, name: name, logger: log}
}

// FetchNew resolves the strategy and runs one fetch.
func (s *RegistrySource) FetchNew(ctx context.Context, max int, processed map[string]struct{}, existing corpus.TitleSet) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.name)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.name, err)
	}

	if s.logger != nil {
		s.logger.Debug("fetch new papers", "source", s.name, "max", max)
	}

	candidates, err := strategy.Scan(ctx, Request{
		Max:            max,
		ProcessedIDs:   processed,
		ExistingTitles: existing,
	})
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", s.name, err)
	}

	if s.logger != nil {
		s.logger.Debug("source produced candidates", "source", s.name, "count", len(candidates))
	}
	return candidates, nil
}
