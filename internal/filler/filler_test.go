package filler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"clanstat/internal/grid"
	"clanstat/internal/reconcile"
	"clanstat/internal/roster"
)

func newRoster(t *testing.T, tags ...string) (*grid.Memory, *roster.Roster) {
	t.Helper()

	g := grid.NewMemory(6)
	require.NoError(t, g.SetValue(1, 2, roster.TagHeader))
	for i, tag := range tags {
		require.NoError(t, g.SetValue(i+2, 2, tag))
	}
	r, err := roster.Read(g)
	require.NoError(t, err)
	return g, r
}

func TestFill_WritesHeaderAndRecords(t *testing.T) {
	t.Parallel()

	g, r := newRoster(t, "#A", "#B")
	period := Period{
		Title:      "部落戰 95-2",
		Annotation: reconcile.WarAnnotation("20240115"),
		Color:      grid.ColorPink,
		Records: []Record{
			{Tag: "#B", Value: "1600 (0)", Rank: 1},
			{Tag: "#A", Value: "0", Flag: NoteNotParticipate},
		},
	}

	var events []ProgressEvent
	report, err := Fill(g, 5, r, period, func(e ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)
	require.Equal(t, []string{"#B", "#A"}, report.Written)
	require.Empty(t, report.Warnings)
	require.Len(t, events, 2)
	require.Equal(t, 2, events[1].Total)

	header, err := g.Cell(1, 5)
	require.NoError(t, err)
	require.Equal(t, "部落戰 95-2", header.Value)
	require.Equal(t, "結算日 20240115", header.Note)
	require.Equal(t, grid.ColorPink, header.Color)

	top, err := g.Cell(3, 5)
	require.NoError(t, err)
	require.Equal(t, "1600 (0)", top.Value)
	require.Equal(t, "ranking: 1", top.Note)
	require.Equal(t, grid.ColorBlue, top.Color)

	idle, err := g.Cell(2, 5)
	require.NoError(t, err)
	require.Equal(t, "0", idle.Value)
	require.Equal(t, NoteNotParticipate, idle.Note)
	require.Equal(t, grid.ColorRed, idle.Color)
}

func TestFill_UnknownTagWarnsAndNeverAddsRows(t *testing.T) {
	t.Parallel()

	g, r := newRoster(t, "#A")
	period := Period{
		Title:      "捐贈 03/14",
		Annotation: reconcile.DonateAnnotation("20240314"),
		Color:      grid.ColorSkin,
		Records: []Record{
			{Tag: "#GONE", Name: "過客", Value: "12"},
			{Tag: "#A", Value: "40"},
		},
	}

	report, err := Fill(g, 5, r, period, nil)
	require.NoError(t, err)
	require.Equal(t, []Warning{{Tag: "#GONE", Name: "過客"}}, report.Warnings)
	require.Equal(t, []string{"#A"}, report.Written)
	require.Equal(t, 1, r.Len())

	again, err := roster.Read(g)
	require.NoError(t, err)
	require.Equal(t, 1, again.Len())

	below, err := g.Cell(3, 5)
	require.NoError(t, err)
	require.Empty(t, below.Value)
}

func TestFill_RankOverridesFlag(t *testing.T) {
	t.Parallel()

	g, r := newRoster(t, "#A")
	records := RaceRecords([]FameEntry{{Tag: "#A"}}, SecondaryRepairPoints)

	_, err := Fill(g, 5, r, Period{Annotation: reconcile.WarAnnotation("20240115"), Records: records}, nil)
	require.NoError(t, err)

	c, err := g.Cell(2, 5)
	require.NoError(t, err)
	require.Equal(t, "0", c.Value)
	require.Equal(t, "ranking: 1", c.Note)
	require.Equal(t, grid.ColorBlue, c.Color)
}
