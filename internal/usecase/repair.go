package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

// RepairDeps wires the repair pipeline.
type RepairDeps struct {
	Summarizer ports.Summarizer
	Papers     ports.PaperStore
	Logger     *slog.Logger
}

// Repair cleans up the accumulated corpus: a whole-store dedup pass followed
// by re-summarization of sentinel error records.
type Repair struct {
	summarizer ports.Summarizer
	papers     ports.PaperStore
	logger     *slog.Logger
}

// RepairReport summarizes what a repair run changed.
type RepairReport struct {
	DuplicatesRemoved int
	Fixed             int
	SkippedNoAbstract int
}

// NewRepair constructs the repair pipeline.
func NewRepair(deps RepairDeps) *Repair {
	return &Repair{
		summarizer: deps.Summarizer,
		papers:     deps.Papers,
		logger:     deps.Logger,
	}
}

// Run executes both repair passes. The dedup pass persists immediately when
// it removed anything; the re-summarization pass persists once after the
// scan.
func (r *Repair) Run(ctx context.Context) (RepairReport, error) {
	r.info("starting repair run")
	var report RepairReport

	papers, err := r.papers.Load()
	if err != nil {
		return report, fmt.Errorf("load papers: %w", err)
	}
	if len(papers) == 0 {
		r.info("no papers found")
		return report, nil
	}

	unique, removed := corpus.Deduplicate(papers)
	report.DuplicatesRemoved = removed
	if removed > 0 {
		r.info("removed duplicate papers", "count", removed)
		if err := r.papers.Save(unique); err != nil {
			return report, fmt.Errorf("save deduplicated papers: %w", err)
		}
	}

	repaired := make([]domain.Paper, 0, len(unique))
	for _, paper := range unique {
		if !paper.IsSummaryError() {
			repaired = append(repaired, paper)
			continue
		}

		if paper.Abstract == "" {
			r.warn("paper has no abstract, skipping re-summarization", "pmid", paper.ID)
			report.SkippedNoAbstract++
			repaired = append(repaired, paper)
			continue
		}

		r.info("re-summarizing paper", "pmid", paper.ID)
		fresh := r.summarizer.Summarize(ctx, domain.Candidate{
			ID:       paper.ID,
			Title:    paper.ResolvedTitle(),
			Abstract: paper.Abstract,
			URL:      paper.URL,
			PubDate:  paper.PubDate,
		})
		if fresh.IsSummaryError() {
			// Still failing: keep the old record untouched.
			repaired = append(repaired, paper)
			continue
		}

		fresh.FetchedDate = paper.FetchedDate
		fresh.ID = paper.ID
		repaired = append(repaired, fresh)
		report.Fixed++
	}

	if err := r.papers.Save(repaired); err != nil {
		return report, fmt.Errorf("save repaired papers: %w", err)
	}

	r.info("repair run completed", "duplicates_removed", report.DuplicatesRemoved,
		"fixed", report.Fixed, "skipped_no_abstract", report.SkippedNoAbstract)
	return report, nil
}

func (r *Repair) info(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Repair) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
