package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

// PaperStore keeps the full paper collection in a single JSON document,
// loaded and rewritten wholesale. Writes go through a temp file and rename so
// a concurrent reader never observes a partial document.
type PaperStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.PaperStore = (*PaperStore)(nil)

// NewPaperStore binds the store to its backing file path.
func NewPaperStore(path string, logger *slog.Logger) *PaperStore {
	return &PaperStore{path: path, logger: logger}
}

// Load reads the full collection. A missing file yields an empty collection,
// and so does an undecodable one (a reader racing a rewrite must degrade to
// "no data", not crash).
func (s *PaperStore) Load() ([]domain.Paper, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.warn("papers file not found, starting empty", "path", s.path)
		return []domain.Paper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var papers []domain.Paper
	if err := json.Unmarshal(raw, &papers); err != nil {
		s.warn("papers file undecodable, treating as empty", "path", s.path, "error", err)
		return []domain.Paper{}, nil
	}

	for i := range papers {
		papers[i].Importance = papers[i].ImportanceOrDefault()
	}
	return papers, nil
}

// Save atomically overwrites the full collection, creating the backing
// directory if absent.
func (s *PaperStore) Save(papers []domain.Paper) error {
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal papers: %w", err)
	}
	return writeAtomic(s.path, data)
}

// ProcessedIDs persists the set of external identifiers already seen by the
// fetch stage, independent of the paper collection. It only ever grows.
type ProcessedIDs struct {
	path   string
	logger *slog.Logger
}

var _ ports.ProcessedIDStore = (*ProcessedIDs)(nil)

// NewProcessedIDs binds the set to its backing file path.
func NewProcessedIDs(path string, logger *slog.Logger) *ProcessedIDs {
	return &ProcessedIDs{path: path, logger: logger}
}

// Load reads the identifier set; missing or undecodable files yield an empty
// set.
func (p *ProcessedIDs) Load() (map[string]struct{}, error) {
	raw, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		if p.logger != nil {
			p.logger.Warn("processed-ids file undecodable, treating as empty", "path", p.path, "error", err)
		}
		return map[string]struct{}{}, nil
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Add unions the given identifiers into the persisted set.
func (p *ProcessedIDs) Add(ids []string) error {
	set, err := p.Load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}

	merged := make([]string, 0, len(set))
	for id := range set {
		merged = append(merged, id)
	}
	sort.Strings(merged)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal processed ids: %w", err)
	}
	return writeAtomic(p.path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func (s *PaperStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
