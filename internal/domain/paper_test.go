package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvedTitle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "orig", Paper{OriginalTitle: "orig", LegacyTitle: "legacy"}.ResolvedTitle())
	require.Equal(t, "legacy", Paper{LegacyTitle: "legacy"}.ResolvedTitle())
	require.Empty(t, Paper{TitleJa: "日本語のみ"}.ResolvedTitle())
}

func TestRecencyKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2024-01-10T07:00:00", Paper{FetchedDate: "2024-01-10T07:00:00", PubDate: "2024-01-05"}.RecencyKey())
	require.Equal(t, "2024-01-05", Paper{PubDate: "2024-01-05"}.RecencyKey())
	require.Equal(t, "0000-00-00", Paper{PubDate: PubDateUnknown}.RecencyKey())
	require.Equal(t, "0000-00-00", Paper{}.RecencyKey())
}

func TestErrorPaper(t *testing.T) {
	t.Parallel()

	p := ErrorPaper(Candidate{ID: "1", Title: "T", Abstract: "A", URL: "u", PubDate: "2024"})
	require.True(t, p.IsSummaryError())
	require.Equal(t, 1, p.Importance)
	require.Equal(t, "T", p.OriginalTitle)
	require.Equal(t, "A", p.Abstract)
}

func TestImportanceOrDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, Paper{}.ImportanceOrDefault())
	require.Equal(t, 4, Paper{Importance: 4}.ImportanceOrDefault())
}
