package corpus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"GLP-1 in Surgery!", "glp1insurgery"},
		{"glp1 in surgery", "glp1insurgery"},
		{"  Video   Laryngoscope:  a review ", "videolaryngoscopeareview"},
		{"Émulsion lipidique 20%", "mulsionlipidique20"},
		{"周術期管理", ""},
		{"A2B3", "a2b3"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeTitle(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"GLP-1 in Surgery!",
		"Frailty & POCUS — 2024 update",
		"already normalized",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		require.Equal(t, once, NormalizeTitle(once))
	}
}

func TestNormalizeTitleCollapsesCaseAndPunctuation(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"GLP-1 in Surgery!", "glp1 in surgery"},
		{"SGLT2 Inhibitors.", "sglt2-inhibitors"},
		{"Regional Anesthesia", "REGIONAL ANESTHESIA"},
	}
	for _, pair := range pairs {
		require.Equal(t, NormalizeTitle(pair[0]), NormalizeTitle(pair[1]))
	}
}
