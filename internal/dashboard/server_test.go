package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/store"
)

func testServer(t *testing.T, papers []domain.Paper) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "papers.json")
	s := store.NewPaperStore(path, nil)
	if papers != nil {
		require.NoError(t, s.Save(papers))
	}
	return NewServer(s, nil)
}

func corpusOfTen() []domain.Paper {
	papers := make([]domain.Paper, 0, 10)
	for day := 1; day <= 10; day++ {
		papers = append(papers, domain.Paper{
			ID:            fmt.Sprintf("p%02d", day),
			OriginalTitle: fmt.Sprintf("Paper %d", day),
			TitleJa:       fmt.Sprintf("論文%d", day),
			Importance:    (day % 5) + 1,
			FetchedDate:   fmt.Sprintf("2024-01-%02dT07:00:00", day),
		})
	}
	return papers
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestLatestEndpoint(t *testing.T) {
	t.Parallel()

	srv := testServer(t, corpusOfTen())
	rec := get(t, srv, "/api/papers/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var latest domain.Paper
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	require.Equal(t, "p10", latest.ID)
}

func TestRecentEndpoint(t *testing.T) {
	t.Parallel()

	srv := testServer(t, corpusOfTen())
	rec := get(t, srv, "/api/papers/recent")
	require.Equal(t, http.StatusOK, rec.Code)

	var recent []domain.Paper
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 7)
	require.Equal(t, "p09", recent[0].ID)
	require.Equal(t, "p03", recent[6].ID)
}

func TestArchiveEndpoint(t *testing.T) {
	t.Parallel()

	papers := corpusOfTen()
	papers = append(papers, domain.Paper{ID: "undated", OriginalTitle: "Undated", PubDate: domain.PubDateUnknown})

	srv := testServer(t, papers)
	rec := get(t, srv, "/api/papers/archive")
	require.Equal(t, http.StatusOK, rec.Code)

	var months []struct {
		Month  string         `json:"month"`
		Papers []domain.Paper `json:"papers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	require.Len(t, months, 2)
	// Months descending; the Others bucket sorts first by raw string order.
	require.Equal(t, "Others", months[0].Month)
	require.Equal(t, []string{"undated"}, []string{months[0].Papers[0].ID})
	require.Equal(t, "2024-01", months[1].Month)
	require.Len(t, months[1].Papers, 2)
}

func TestEmptyCorpus(t *testing.T) {
	t.Parallel()

	srv := testServer(t, nil)

	rec := get(t, srv, "/api/papers/latest")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, srv, "/api/papers/recent")
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []domain.Paper
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Empty(t, recent)

	rec = get(t, srv, "/api/papers/archive")
	require.Equal(t, http.StatusOK, rec.Code)
	var months []struct {
		Month string `json:"month"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	require.Empty(t, months)
}

func TestCorruptStoreReadsAsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "papers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "mid-rewri`), 0o644))

	srv := NewServer(store.NewPaperStore(path, nil), nil)
	rec := get(t, srv, "/api/papers/latest")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := testServer(t, nil)
	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}
