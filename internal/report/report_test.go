package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clanstat/internal/crapi"
)

const clanTag = "#CLAN"

type fakeSource struct {
	members []crapi.Member
	wars    []crapi.War
	races   []crapi.RiverRace
	race    *crapi.CurrentRace
	err     error
}

func (f *fakeSource) ClanTag() string { return clanTag }

func (f *fakeSource) MemberList(context.Context) ([]crapi.Member, error) { return f.members, f.err }

func (f *fakeSource) Warlog(context.Context, int) ([]crapi.War, error) { return f.wars, f.err }

func (f *fakeSource) Racelog(context.Context, int) ([]crapi.RiverRace, error) { return f.races, f.err }

func (f *fakeSource) CurrentRace(context.Context) (*crapi.CurrentRace, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.race, nil
}

func newPrinter(src Source) (*Printer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrinter(src, Options{
		Out:      out,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC) },
	}), out
}

func TestMembers(t *testing.T) {
	t.Parallel()

	p, out := newPrinter(&fakeSource{members: []crapi.Member{
		{Name: "阿明", Role: crapi.RoleLeader, ClanRank: 1, Trophies: 6100, LastSeen: "20240314T090000.000Z"},
		{Name: "Bob", Role: crapi.RoleElder, ClanRank: 2, Trophies: 5000, LastSeen: "20240301T120000.000Z"},
		{Name: "Carol", Role: crapi.RoleElder, ClanRank: 3, Trophies: 4000},
	}})

	require.NoError(t, p.Members(context.Background()))
	text := out.String()
	require.Contains(t, text, "部落成員，共 3 名")
	require.Contains(t, text, "3 時")
	require.Contains(t, text, "1 週")
	require.Contains(t, text, "首領:     1 位")
	require.Contains(t, text, "長老:     2 位")
	require.Contains(t, text, "副首:     0 位")
}

func TestMembers_FetchFailure(t *testing.T) {
	t.Parallel()

	p, out := newPrinter(&fakeSource{err: errors.New("status 503")})
	require.Error(t, p.Members(context.Background()))
	require.Contains(t, out.String(), "沒有可顯示的成員")

	p, out = newPrinter(&fakeSource{})
	require.ErrorIs(t, p.Members(context.Background()), ErrEmpty)
	require.Contains(t, out.String(), "沒有可顯示的成員")
}

func TestWarlog_OldestFirst(t *testing.T) {
	t.Parallel()

	p, out := newPrinter(&fakeSource{wars: []crapi.War{
		{
			CreatedDate:  "20200110T093000.000Z",
			Participants: []crapi.WarParticipant{{Name: "阿明"}, {Name: "Bob"}, {Name: "Carol"}, {Name: "Dora"}},
			Standings:    []crapi.WarStanding{{Clan: crapi.WarClan{Tag: clanTag}, TrophyChange: 42}},
		},
		{CreatedDate: "20200108T093000.000Z"},
	}})

	require.NoError(t, p.Warlog(context.Background(), 2))
	text := out.String()
	require.Contains(t, text, "部落戰紀錄 20200108 ~ 20200110，共 2 筆")
	require.Less(t, strings.Index(text, "部落戰 20200108"), strings.Index(text, "部落戰 20200110"))
	require.Contains(t, text, "獎盃： 42")
	require.Contains(t, text, "參加人數： 4")
	require.Contains(t, text, "\n\tDora")
}

func TestRacelog(t *testing.T) {
	t.Parallel()

	p, out := newPrinter(&fakeSource{races: []crapi.RiverRace{{
		SeasonID:     95,
		SectionIndex: 1,
		CreatedDate:  "20240122T093000.000Z",
		Standings: []crapi.RaceStanding{{
			Rank:         2,
			TrophyChange: 20,
			Clan: crapi.RaceClan{
				Tag:          clanTag,
				Fame:         10000,
				FinishTime:   "20240121T101500.000Z",
				Participants: []crapi.RaceParticipant{{Name: "Bob", Fame: 100, DecksUsed: 2}, {Name: "阿明", Fame: 1600, DecksUsed: 16}},
			},
		}},
	}}})

	require.NoError(t, p.Racelog(context.Background(), 0))
	text := out.String()
	require.Contains(t, text, "河流競賽 95-2")
	require.Contains(t, text, "完成日期： 20240121")
	require.Contains(t, text, "名次： 2")
	require.Contains(t, text, "(1600 / 16)")
	require.Less(t, strings.Index(text, "阿明"), strings.Index(text, "Bob"))
}

func TestRace(t *testing.T) {
	t.Parallel()

	p, out := newPrinter(&fakeSource{race: &crapi.CurrentRace{
		SectionIndex: 0,
		Clan:         crapi.RaceClan{Tag: clanTag, Name: "Ours", ClanScore: 3000, Fame: 5000},
		Clans: []crapi.RaceClan{
			{Tag: "#OTHER", Name: "Rival", ClanScore: 2800, Fame: 7000, FinishTime: "20240314T080000.000Z"},
			{Tag: clanTag, Name: "Ours", ClanScore: 3000, Fame: 5000},
		},
	}})

	require.NoError(t, p.Race(context.Background()))
	text := out.String()
	require.Contains(t, text, "河流競賽 Week 1")
	require.Contains(t, text, "Rival (2800)")
	require.Contains(t, text, "20240314")
	require.Contains(t, text, "未完成")
	require.Equal(t, 1, strings.Count(text, "Ours (3000)"))

	require.True(t, ownStyle.GetReverse())
	require.False(t, titleStyle.GetReverse())
}

func TestRace_FetchFailure(t *testing.T) {
	t.Parallel()

	p, out := newPrinter(&fakeSource{err: errors.New("status 404")})
	require.Error(t, p.Race(context.Background()))
	require.Contains(t, out.String(), "沒有正在進行的部落戰")
}
