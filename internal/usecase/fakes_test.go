package usecase

import (
	"context"
	"errors"

	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
)

type fakeSource struct {
	candidates []domain.Candidate
	err        error

	gotMax       int
	gotProcessed map[string]struct{}
	gotExisting  corpus.TitleSet
}

func (f *fakeSource) FetchNew(_ context.Context, max int, processed map[string]struct{}, existing corpus.TitleSet) ([]domain.Candidate, error) {
	f.gotMax = max
	f.gotProcessed = processed
	f.gotExisting = existing
	return f.candidates, f.err
}

// fakeSummarizer succeeds unless the candidate id is listed in failFor.
type fakeSummarizer struct {
	failFor map[string]bool
	calls   []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, c domain.Candidate) domain.Paper {
	f.calls = append(f.calls, c.ID)
	if f.failFor[c.ID] {
		return domain.ErrorPaper(c)
	}
	return domain.Paper{
		ID:             c.ID,
		OriginalTitle:  c.Title,
		TitleJa:        "和訳: " + c.Title,
		Summary:        "summary of " + c.ID,
		ClinicalAction: "action for " + c.ID,
		Importance:     3,
		Abstract:       c.Abstract,
		URL:            c.URL,
		PubDate:        c.PubDate,
	}
}

type fakeNotifier struct {
	notified [][]domain.Paper
	err      error
}

func (f *fakeNotifier) NotifyNewPapers(_ context.Context, papers []domain.Paper) error {
	f.notified = append(f.notified, papers)
	return f.err
}

type memPaperStore struct {
	papers  []domain.Paper
	saves   int
	saveErr error
}

func (m *memPaperStore) Load() ([]domain.Paper, error) {
	out := make([]domain.Paper, len(m.papers))
	copy(out, m.papers)
	return out, nil
}

func (m *memPaperStore) Save(papers []domain.Paper) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.papers = make([]domain.Paper, len(papers))
	copy(m.papers, papers)
	return nil
}

type memProcessedIDs struct {
	ids    map[string]struct{}
	addErr error
}

func newMemProcessedIDs(ids ...string) *memProcessedIDs {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &memProcessedIDs{ids: set}
}

func (m *memProcessedIDs) Load() (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(m.ids))
	for id := range m.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (m *memProcessedIDs) Add(ids []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	for _, id := range ids {
		m.ids[id] = struct{}{}
	}
	return nil
}

var errBoom = errors.New("boom")
