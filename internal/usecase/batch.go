package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

const fetchedDateLayout = "2006-01-02T15:04:05"

// BatchDeps wires all driven adapters into the ingestion pipeline.
type BatchDeps struct {
	Source       ports.PaperSource
	Summarizer   ports.Summarizer
	Notifier     ports.Notifier
	Papers       ports.PaperStore
	ProcessedIDs ports.ProcessedIDStore
	MaxResults   int
	Logger       *slog.Logger
	Now          func() time.Time
}

// Batch implements the fetch → summarize → persist → notify ingestion run.
type Batch struct {
	source       ports.PaperSource
	summarizer   ports.Summarizer
	notifier     ports.Notifier
	papers       ports.PaperStore
	processedIDs ports.ProcessedIDStore
	maxResults   int
	logger       *slog.Logger
	now          func() time.Time
}

// NewBatch constructs the ingestion pipeline.
func NewBatch(deps BatchDeps) *Batch {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	max := deps.MaxResults
	if max <= 0 {
		max = 1
	}
	return &Batch{
		source:       deps.Source,
		summarizer:   deps.Summarizer,
		notifier:     deps.Notifier,
		papers:       deps.Papers,
		processedIDs: deps.ProcessedIDs,
		maxResults:   max,
		logger:       deps.Logger,
		now:          now,
	}
}

// Run executes one ingestion pass. Fetch, summarize, and notify failures
// degrade; only a failure to persist the paper collection aborts the run, and
// it aborts before the processed-ID update and the notification so no side
// effect can outlive unsaved data.
func (b *Batch) Run(ctx context.Context) error {
	b.info("starting batch run")

	processed, err := b.processedIDs.Load()
	if err != nil {
		return fmt.Errorf("load processed ids: %w", err)
	}
	existing, err := b.papers.Load()
	if err != nil {
		return fmt.Errorf("load papers: %w", err)
	}

	candidates, err := b.source.FetchNew(ctx, b.maxResults, processed, corpus.NewTitleSet(existing))
	if err != nil {
		b.error("fetch failed, no new papers this run", "error", err)
		return nil
	}
	if len(candidates) == 0 {
		b.info("no new papers found")
		return nil
	}
	b.info("fetched new papers, starting summarization", "count", len(candidates))

	fetchedAt := b.now().Format(fetchedDateLayout)
	results := make([]domain.Paper, 0, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		paper := b.summarizer.Summarize(ctx, cand)
		paper.FetchedDate = fetchedAt
		results = append(results, paper)
		ids = append(ids, cand.ID)
	}

	if err := b.papers.Save(append(existing, results...)); err != nil {
		return fmt.Errorf("save papers: %w", err)
	}
	b.info("saved new papers", "count", len(results))

	// Candidate ids are marked processed whether or not their summarization
	// succeeded; the repair pipeline re-drives sentinels later.
	if err := b.processedIDs.Add(ids); err != nil {
		b.error("failed to update processed ids", "error", err)
	} else {
		b.info("marked ids as processed", "count", len(ids))
	}

	if b.notifier != nil {
		if err := b.notifier.NotifyNewPapers(ctx, results); err != nil {
			b.error("failed to send notification", "error", err)
		}
	}

	b.info("batch run completed")
	return nil
}

func (b *Batch) info(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *Batch) error(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Error(msg, args...)
	}
}
