package ports

import (
	"context"
	"time"

	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
)

// PaperSource pulls fresh candidates from a literature database, already
// filtered against the processed-ID set and against existing-store titles.
type PaperSource interface {
	FetchNew(ctx context.Context, max int, processed map[string]struct{}, existing corpus.TitleSet) ([]domain.Candidate, error)
}

// Summarizer enriches a candidate into a full Paper. Implementations never
// fail the run: on any internal error they return the sentinel error record.
type Summarizer interface {
	Summarize(ctx context.Context, candidate domain.Candidate) domain.Paper
}

// Notifier broadcasts a digest built from the run's summarized papers.
type Notifier interface {
	NotifyNewPapers(ctx context.Context, papers []domain.Paper) error
}

// PaperStore persists the full record collection wholesale.
type PaperStore interface {
	Load() ([]domain.Paper, error)
	Save(papers []domain.Paper) error
}

// ProcessedIDStore persists the set of external identifiers already ingested.
type ProcessedIDStore interface {
	Load() (map[string]struct{}, error)
	Add(ids []string) error
}

// Scheduler controls when the batch pipeline executes in daemon mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
