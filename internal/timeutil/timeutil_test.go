package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	got, err := Parse("20240115T093000.000Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), got)

	_, err = Parse("2024-01-15")
	require.Error(t, err)
}

func TestLocalDateToken_CrossesMidnight(t *testing.T) {
	t.Parallel()

	taipei := time.FixedZone("UTC+8", 8*60*60)
	got, err := LocalDateToken("20240115T170000.000Z", taipei)
	require.NoError(t, err)
	require.Equal(t, "20240116", got)

	got, err = LocalDateToken("20240115T170000.000Z", time.UTC)
	require.NoError(t, err)
	require.Equal(t, "20240115", got)
}

func TestParseMonthDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

	got, err := ParseMonthDay("03/14", now)
	require.NoError(t, err)
	require.Equal(t, "20240314", DateToken(got, time.UTC))
	require.Equal(t, "03/14", MonthDay(got))

	got, err = ParseMonthDay("3/4", now)
	require.NoError(t, err)
	require.Equal(t, "03/04", MonthDay(got))

	for _, bad := range []string{"", "0314", "13/01", "02/30", "aa/bb"} {
		_, err := ParseMonthDay(bad, now)
		require.Error(t, err, bad)
	}
}

func TestParseMonthDay_Messages(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"0314":  "日期格式應為 MM/DD",
		"13/01": "無效月份",
		"02/30": "無效日期",
	}
	for input, want := range cases {
		_, err := ParseMonthDay(input, now)
		require.ErrorContains(t, err, want, input)
	}
}

func TestRounded(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]string{
		20 * time.Second:           "20 秒",
		time.Minute:                "60 秒",
		5 * time.Minute:            "5 分",
		3 * time.Hour:              "3 時",
		50 * time.Hour:             "2 天",
		15 * 24 * time.Hour:        "2 週",
		-3 * time.Second:           "0 秒",
		7*24*time.Hour + time.Hour: "1 週",
	}
	for d, want := range cases {
		require.Equal(t, want, Rounded(d), d.String())
	}
}
