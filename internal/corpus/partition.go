package corpus

import (
	"errors"
	"sort"
	"time"

	"AnesthUpdate/internal/domain"
)

// ErrEmptyCorpus is returned by Partition when there are no records to rank.
var ErrEmptyCorpus = errors.New("corpus is empty")

// OthersMonthKey buckets archive records whose date cannot be resolved to a
// year-month.
const OthersMonthKey = "Others"

const recentWindow = 7

// Partition is the derived navigation view over the corpus: the single most
// recent record, a fixed-size window of the next ones, and everything older.
// It is recomputed from the record set on every call and never persisted.
type Partition struct {
	Latest  domain.Paper
	Recent  []domain.Paper
	Archive []domain.Paper
}

// NewPartition sorts records descending by recency key and splits them into
// latest / recent / archive. The sort is stable so repeated partitioning of
// unchanged input is reproducible. Returns ErrEmptyCorpus for an empty set.
func NewPartition(papers []domain.Paper) (Partition, error) {
	if len(papers) == 0 {
		return Partition{}, ErrEmptyCorpus
	}

	sorted := make([]domain.Paper, len(papers))
	copy(sorted, papers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecencyKey() > sorted[j].RecencyKey()
	})

	part := Partition{Latest: sorted[0]}
	if len(sorted) > 1 {
		end := 1 + recentWindow
		if end > len(sorted) {
			end = len(sorted)
		}
		part.Recent = sorted[1:end]
		part.Archive = sorted[end:]
	}
	return part, nil
}

// ArchiveByMonth groups archive records by the year-month of their recency
// date. Strict ISO-8601 parsing is attempted first; unparseable dates fall
// back to their first seven characters, and dates that are missing, Unknown,
// or too short land in the Others bucket.
func ArchiveByMonth(archive []domain.Paper) map[string][]domain.Paper {
	grouped := make(map[string][]domain.Paper)
	for _, p := range archive {
		key := monthKey(p)
		grouped[key] = append(grouped[key], p)
	}
	return grouped
}

// MonthKeys enumerates the group keys most recent month first.
func MonthKeys(grouped map[string][]domain.Paper) []string {
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func monthKey(p domain.Paper) string {
	date := p.FetchedDate
	if date == "" {
		date = p.PubDate
	}
	if date == "" || date == domain.PubDateUnknown {
		return OthersMonthKey
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01")
		}
	}

	if len(date) >= 7 {
		return date[:7]
	}
	return OthersMonthKey
}
