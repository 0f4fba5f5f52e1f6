package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AnesthUpdate/internal/config"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/scanner"
)

const paperURLFormat = "https://pubmed.ncbi.nlm.nih.gov/%s/"

// Scanner fetches recent papers via the NCBI E-utilities: an esearch pass for
// identifiers followed by an efetch pass for article details.
type Scanner struct {
	cfg    config.PubMedConfig
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*Scanner)(nil)

// NewScanner wires an HTTP client; a nil client gets a 20s timeout default.
func NewScanner(cfg config.PubMedConfig, client *http.Client, logger *slog.Logger) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Scanner{cfg: cfg, client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "pubmed"
}

// Scan searches for identifiers, drops the ones already processed, then
// fetches details for at most req.Max of the remainder, skipping candidates
// whose title already exists in the store.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	if s.cfg.Email == "" {
		return nil, fmt.Errorf("pubmed: EMAIL is required for E-utilities access")
	}

	ids, err := s.search(ctx)
	if err != nil {
		return nil, err
	}
	s.debug("esearch done", "found", len(ids))

	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := req.ProcessedIDs[id]; ok {
			continue
		}
		fresh = append(fresh, id)
	}
	s.debug("new papers after id check", "count", len(fresh))

	if len(fresh) == 0 {
		return []domain.Candidate{}, nil
	}
	if req.Max > 0 && len(fresh) > req.Max {
		fresh = fresh[:req.Max]
	}

	articles, err := s.fetchDetails(ctx, fresh)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(articles))
	skipped := 0
	for _, art := range articles {
		cand := art.toCandidate()
		if req.ExistingTitles.Contains(cand.Title) {
			s.debug("skipping duplicate title", "pmid", cand.ID, "title", truncate(cand.Title, 30))
			skipped++
			continue
		}
		candidates = append(candidates, cand)
	}
	if skipped > 0 {
		s.debug("skipped papers due to title duplication", "count", skipped)
	}

	return candidates, nil
}

func (s *Scanner) search(ctx context.Context) ([]string, error) {
	query := buildQuery(s.cfg)
	s.debug("searching pubmed", "query", query)

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", fmt.Sprintf("%d", s.cfg.SearchRetMax))
	params.Set("reldate", fmt.Sprintf("%d", s.cfg.RelDateDays))
	params.Set("datetype", "pdat")
	params.Set("sort", "relevance")
	params.Set("retmode", "json")
	params.Set("email", s.cfg.Email)

	var result struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := s.get(ctx, "/esearch.fcgi", params, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(&result)
	}); err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}

	return result.ESearchResult.IDList, nil
}

func (s *Scanner) fetchDetails(ctx context.Context, ids []string) ([]pubmedArticle, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "medline")
	params.Set("retmode", "xml")
	params.Set("email", s.cfg.Email)

	var set articleSet
	if err := s.get(ctx, "/efetch.fcgi", params, func(resp *http.Response) error {
		return xml.NewDecoder(resp.Body).Decode(&set)
	}); err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}

	return set.Articles, nil
}

func (s *Scanner) get(ctx context.Context, path string, params url.Values, decode func(*http.Response) error) error {
	endpoint := strings.TrimSuffix(s.cfg.BaseURL, "/") + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "AnesthUpdate/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pubmed returned %s", resp.Status)
	}

	return decode(resp)
}

// buildQuery assembles (base AND keywords AND types) NOT exclusions from the
// configured term lists. The syntax itself is opaque to the rest of the
// system.
func buildQuery(cfg config.PubMedConfig) string {
	var parts []string
	if group := orGroup(cfg.BaseTerms); group != "" {
		parts = append(parts, group)
	}
	if group := orGroup(cfg.Keywords); group != "" {
		parts = append(parts, group)
	}
	if group := orGroup(cfg.PubTypes); group != "" {
		parts = append(parts, group)
	}

	query := strings.Join(parts, " AND ")
	for _, excl := range cfg.Exclusions {
		query += " NOT " + excl
	}
	return query
}

func orGroup(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

type articleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID     string     `xml:"MedlineCitation>PMID"`
	Title    markupText `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract struct {
		Parts []markupText `xml:"AbstractText"`
	} `xml:"MedlineCitation>Article>Abstract"`
	PubDate struct {
		Year  string `xml:"Year"`
		Month string `xml:"Month"`
		Day   string `xml:"Day"`
	} `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate"`
}

// markupText captures raw inner XML so inline markup (<i>, <sub>, entity
// references) can be flattened to plain text.
type markupText struct {
	Inner string `xml:",innerxml"`
}

func (m markupText) Text() string {
	if m.Inner == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(m.Inner))
	if err != nil {
		return strings.TrimSpace(m.Inner)
	}
	return strings.TrimSpace(doc.Text())
}

func (a pubmedArticle) toCandidate() domain.Candidate {
	title := a.Title.Text()
	if title == "" {
		title = "No Title"
	}

	parts := make([]string, 0, len(a.Abstract.Parts))
	for _, part := range a.Abstract.Parts {
		if text := part.Text(); text != "" {
			parts = append(parts, text)
		}
	}

	pubDate := strings.Trim(strings.Join([]string{a.PubDate.Year, a.PubDate.Month, a.PubDate.Day}, "-"), "-")
	if pubDate == "" {
		pubDate = domain.PubDateUnknown
	}

	return domain.Candidate{
		ID:       a.PMID,
		Title:    title,
		Abstract: strings.Join(parts, " "),
		PubDate:  pubDate,
		URL:      fmt.Sprintf(paperURLFormat, a.PMID),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func (s *Scanner) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
