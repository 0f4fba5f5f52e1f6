package domain

// Paper is the unit of persistence: one literature item plus its derived
// summary. Optional fields keep their zero value when absent from legacy
// records; display order is always derived from RecencyKey, never stored.
type Paper struct {
	ID             string `json:"id"`
	OriginalTitle  string `json:"original_title,omitempty"`
	LegacyTitle    string `json:"title,omitempty"`
	TitleJa        string `json:"title_ja,omitempty"`
	Summary        string `json:"summary,omitempty"`
	ClinicalAction string `json:"clinical_action,omitempty"`
	Importance     int    `json:"importance,omitempty"`
	Abstract       string `json:"abstract,omitempty"`
	URL            string `json:"url,omitempty"`
	PubDate        string `json:"pub_date,omitempty"`
	FetchedDate    string `json:"fetched_date,omitempty"`
}

// Candidate is the fetch-shaped record produced by a literature source
// before summarization.
type Candidate struct {
	ID       string
	Title    string
	Abstract string
	PubDate  string
	URL      string
}

// PubDateUnknown marks papers whose journal issue carried no usable date.
const PubDateUnknown = "Unknown"

// Fixed text substituted when summarization fails. The repair pipeline keys
// on these values to find records worth re-driving.
const (
	ErrorTitleJa        = "要約エラー"
	ErrorSummary        = "要約の生成に失敗しました。"
	ErrorClinicalAction = "原文を確認してください。"
)

// recencyFloor sorts date-less records after anything with a real date.
const recencyFloor = "0000-00-00"

// ResolvedTitle returns the source-language title used as the dedup key
// input: original_title, falling back to the legacy title field. Empty when
// neither is present (such records are dedup-exempt).
func (p Paper) ResolvedTitle() string {
	if p.OriginalTitle != "" {
		return p.OriginalTitle
	}
	return p.LegacyTitle
}

// RecencyKey is the derived sort key for display ordering: fetched_date when
// present, else pub_date unless it is the Unknown sentinel. Dates are ISO-8601
// prefixed strings, so plain string comparison orders them chronologically.
func (p Paper) RecencyKey() string {
	if p.FetchedDate != "" {
		return p.FetchedDate
	}
	if p.PubDate != "" && p.PubDate != PubDateUnknown {
		return p.PubDate
	}
	return recencyFloor
}

// IsSummaryError reports whether the record carries the failed-summarization
// sentinel text.
func (p Paper) IsSummaryError() bool {
	return p.TitleJa == ErrorTitleJa || p.Summary == ErrorSummary
}

// ImportanceOrDefault treats an absent importance as the minimum score 1.
func (p Paper) ImportanceOrDefault() int {
	if p.Importance < 1 {
		return 1
	}
	return p.Importance
}

// ErrorPaper builds the sentinel record for a candidate whose summarization
// failed, carrying the source fields through for later repair.
func ErrorPaper(c Candidate) Paper {
	return Paper{
		ID:             c.ID,
		OriginalTitle:  c.Title,
		TitleJa:        ErrorTitleJa,
		Summary:        ErrorSummary,
		ClinicalAction: ErrorClinicalAction,
		Importance:     1,
		Abstract:       c.Abstract,
		URL:            c.URL,
		PubDate:        c.PubDate,
	}
}
