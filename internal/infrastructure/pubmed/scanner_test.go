package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"AnesthUpdate/internal/config"
	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/scanner"
)

const efetchPayload = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38000001</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2024</Year><Month>01</Month><Day>05</Day></PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>GLP-1 agonists and <i>aspiration</i> risk</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Part one.</AbstractText>
          <AbstractText Label="RESULTS">Part two.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38000002</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate></PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>Frailty scores in perioperative care</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func testConfig(baseURL string) config.PubMedConfig {
	return config.PubMedConfig{
		BaseURL:      baseURL,
		Email:        "doc@example.org",
		SearchRetMax: 100,
		RelDateDays:  365,
		BaseTerms:    []string{`Anesthesiology[Title/Abstract]`},
		Keywords:     []string{`"GLP-1"`, `"Frailty"`},
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/esearch.fcgi"):
			if r.URL.Query().Get("retmode") != "json" {
				t.Errorf("esearch retmode = %q", r.URL.Query().Get("retmode"))
			}
			_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["38000001","38000002","37999999"]}}`))
		case strings.HasPrefix(r.URL.Path, "/efetch.fcgi"):
			if got := r.URL.Query().Get("id"); got != "38000001,38000002" {
				t.Errorf("efetch id = %q", got)
			}
			_, _ = w.Write([]byte(efetchPayload))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	sc := NewScanner(testConfig(server.URL), server.Client(), nil)

	candidates, err := sc.Scan(context.Background(), scanner.Request{
		Max:          5,
		ProcessedIDs: map[string]struct{}{"37999999": {}},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.ID != "38000001" {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if first.Title != "GLP-1 agonists and aspiration risk" {
		t.Fatalf("markup not stripped from title: %q", first.Title)
	}
	if first.Abstract != "Part one. Part two." {
		t.Fatalf("unexpected abstract: %q", first.Abstract)
	}
	if first.PubDate != "2024-01-05" {
		t.Fatalf("unexpected pub date: %s", first.PubDate)
	}
	if first.URL != "https://pubmed.ncbi.nlm.nih.gov/38000001/" {
		t.Fatalf("unexpected url: %s", first.URL)
	}

	second := candidates[1]
	if second.PubDate != domain.PubDateUnknown {
		t.Fatalf("expected Unknown pub date, got %s", second.PubDate)
	}
	if second.Abstract != "" {
		t.Fatalf("expected empty abstract, got %q", second.Abstract)
	}
}

func TestScanFiltersExistingTitles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/esearch.fcgi") {
			_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["38000001","38000002"]}}`))
			return
		}
		_, _ = w.Write([]byte(efetchPayload))
	}))
	defer server.Close()

	sc := NewScanner(testConfig(server.URL), server.Client(), nil)

	existing := corpus.NewTitleSet([]domain.Paper{
		{ID: "old", OriginalTitle: "GLP-1 Agonists and Aspiration Risk!"},
	})

	candidates, err := sc.Scan(context.Background(), scanner.Request{Max: 5, ExistingTitles: existing})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ID != "38000002" {
		t.Fatalf("unexpected survivor: %s", candidates[0].ID)
	}
}

func TestScanHonorsMax(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/esearch.fcgi") {
			_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["38000001","38000002"]}}`))
			return
		}
		if got := r.URL.Query().Get("id"); got != "38000001" {
			t.Errorf("efetch id = %q, want only first", got)
		}
		_, _ = w.Write([]byte(`<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>38000001</PMID><Article><ArticleTitle>T</ArticleTitle></Article></MedlineCitation></PubmedArticle></PubmedArticleSet>`))
	}))
	defer server.Close()

	sc := NewScanner(testConfig(server.URL), server.Client(), nil)
	candidates, err := sc.Scan(context.Background(), scanner.Request{Max: 1})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
}

func TestScanRequiresEmail(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://unused")
	cfg.Email = ""
	sc := NewScanner(cfg, nil, nil)

	if _, err := sc.Scan(context.Background(), scanner.Request{Max: 1}); err == nil {
		t.Fatal("expected config error when EMAIL is missing")
	}
}

func TestScanUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	sc := NewScanner(testConfig(server.URL), server.Client(), nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{Max: 1}); err == nil {
		t.Fatal("expected error from failing upstream")
	}
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	cfg := config.PubMedConfig{
		BaseTerms:  []string{"A", "B"},
		Keywords:   []string{"K"},
		PubTypes:   []string{"T1", "T2"},
		Exclusions: []string{"X"},
	}

	got := buildQuery(cfg)
	want := "(A OR B) AND (K) AND (T1 OR T2) NOT X"
	if got != want {
		t.Fatalf("buildQuery = %q, want %q", got, want)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"a longer ascii title", 8, "a longer..."},
		{"全身麻酔下の体温管理", 4, "全身麻酔..."},
		{"全身麻酔", 4, "全身麻酔"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
