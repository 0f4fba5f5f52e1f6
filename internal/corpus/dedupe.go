package corpus

import "AnesthUpdate/internal/domain"

// TitleSet is a membership index of normalized titles, used at ingestion time
// to reject candidates whose title already exists anywhere in the store.
type TitleSet map[string]struct{}

// NewTitleSet indexes the normalized titles of all records that have one.
// Title-less records contribute nothing.
func NewTitleSet(papers []domain.Paper) TitleSet {
	set := make(TitleSet, len(papers))
	for _, p := range papers {
		title := p.ResolvedTitle()
		if title == "" {
			continue
		}
		set[NormalizeTitle(title)] = struct{}{}
	}
	return set
}

// Contains reports whether the raw title normalizes to a known key.
// An empty title is never considered present.
func (s TitleSet) Contains(title string) bool {
	if title == "" {
		return false
	}
	_, ok := s[NormalizeTitle(title)]
	return ok
}

// Deduplicate drops records whose normalized title was already seen earlier
// in the sequence, returning the survivors in input order and the number of
// records removed. First occurrence wins, so callers wanting a different
// winner must pre-sort. Records without any usable title are exempt: always
// kept, never registered in the seen-set.
func Deduplicate(papers []domain.Paper) ([]domain.Paper, int) {
	kept := make([]domain.Paper, 0, len(papers))
	seen := make(map[string]struct{}, len(papers))
	removed := 0

	for _, p := range papers {
		title := p.ResolvedTitle()
		if title == "" {
			kept = append(kept, p)
			continue
		}

		key := NormalizeTitle(title)
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, p)
	}

	return kept, removed
}
