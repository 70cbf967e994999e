package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		note  string
		ok    bool
		genre Genre
		date  string
	}{
		{note: "結算日 20240101", ok: true, genre: GenreWar, date: "20240101"},
		{note: "發起日 20231231", ok: true, genre: GenreWar, date: "20231231"},
		{note: "統計日 20240314", ok: true, genre: GenreDonate, date: "20240314"},
		{note: "  統計日\t20240314  extra", ok: true, genre: GenreDonate, date: "20240314"},
		{note: "", ok: false},
		{note: "結算日", ok: false},
		{note: "結算日 2024-01-01", ok: false},
		{note: "結算日 240101", ok: false},
		{note: "首領 3\n副首 2\n長老 1\n成員 0", ok: false},
		{note: "ranking: 1", ok: false},
	}
	for _, tc := range cases {
		ann, ok := ParseAnnotation(tc.note)
		require.Equal(t, tc.ok, ok, "note %q", tc.note)
		if !tc.ok {
			continue
		}
		require.Equal(t, tc.genre, ann.Genre(), "note %q", tc.note)
		require.Equal(t, tc.date, ann.Date, "note %q", tc.note)
	}
}

func TestAnnotationString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "結算日 20240101", WarAnnotation("20240101").String())
	require.Equal(t, "統計日 20240314", DonateAnnotation("20240314").String())

	ann, ok := ParseAnnotation(DonateAnnotation("20240314").String())
	require.True(t, ok)
	require.Equal(t, GenreDonate, ann.Genre())
}
