package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

// Server exposes the read-only browsing API over the paper corpus: today's
// pick, the recent window, and the month-grouped archive. It reloads and
// re-partitions the store on every request, so it can run alongside a batch
// pipeline; a store mid-rewrite reads as an empty corpus.
type Server struct {
	papers ports.PaperStore
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer wires the handlers.
func NewServer(papers ports.PaperStore, logger *slog.Logger) *Server {
	s := &Server{papers: papers, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/papers/latest", s.handleLatest)
	s.mux.HandleFunc("GET /api/papers/recent", s.handleRecent)
	s.mux.HandleFunc("GET /api/papers/archive", s.handleArchive)
	return s
}

// Handler returns the root handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks serving the API until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	part, ok := s.partition(w, false)
	if !ok {
		return
	}
	s.writeJSON(w, part.Latest)
}

func (s *Server) handleRecent(w http.ResponseWriter, _ *http.Request) {
	part, ok := s.partition(w, true)
	if !ok {
		return
	}
	if part.Recent == nil {
		part.Recent = []domain.Paper{}
	}
	s.writeJSON(w, part.Recent)
}

type archiveMonth struct {
	Month  string         `json:"month"`
	Papers []domain.Paper `json:"papers"`
}

func (s *Server) handleArchive(w http.ResponseWriter, _ *http.Request) {
	part, ok := s.partition(w, true)
	if !ok {
		return
	}

	grouped := corpus.ArchiveByMonth(part.Archive)
	months := make([]archiveMonth, 0, len(grouped))
	for _, key := range corpus.MonthKeys(grouped) {
		months = append(months, archiveMonth{Month: key, Papers: grouped[key]})
	}
	s.writeJSON(w, months)
}

// partition loads and partitions the corpus, writing the HTTP error itself
// on failure. The list endpoints pass emptyOK and get an empty partition
// back when the corpus holds nothing; latest has no meaning then and maps
// the empty corpus to 404. The second return is false when a response has
// already been written.
func (s *Server) partition(w http.ResponseWriter, emptyOK bool) (corpus.Partition, bool) {
	papers, err := s.papers.Load()
	if err != nil {
		s.error("failed to load papers", "error", err)
		http.Error(w, "papers unavailable", http.StatusInternalServerError)
		return corpus.Partition{}, false
	}

	part, err := corpus.NewPartition(papers)
	if errors.Is(err, corpus.ErrEmptyCorpus) {
		if emptyOK {
			return corpus.Partition{}, true
		}
		http.Error(w, "no papers available", http.StatusNotFound)
		return corpus.Partition{}, false
	}
	if err != nil {
		s.error("failed to partition papers", "error", err)
		http.Error(w, "papers unavailable", http.StatusInternalServerError)
		return corpus.Partition{}, false
	}
	return part, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.error("failed to encode response", "error", err)
	}
}

func (s *Server) error(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
