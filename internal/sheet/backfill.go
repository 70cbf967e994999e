package sheet

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"clanstat/internal/crapi"
	"clanstat/internal/filler"
	"clanstat/internal/grid"
	"clanstat/internal/reconcile"
	"clanstat/internal/roster"
	"clanstat/internal/timeutil"
)

// BackfillResult 一次补录的结果
type BackfillResult struct {
	// Recorded 新写入的周期数
	Recorded int
	// Inserted 在哨兵列前插入的列数
	Inserted int
	Warnings []filler.Warning
}

// dated 待补录周期，按新到旧排列
type dated struct {
	date   string
	period func() filler.Period
}

// backfill 只补录最近记录之后的周期，从最旧的开始，每个周期占一个新列
func (s *Service) backfill(ctx context.Context, r *roster.Roster, periods []dated, label string) (BackfillResult, error) {
	var result BackfillResult

	headers, err := reconcile.Headers(s.grid, r.HeaderRow)
	if err != nil {
		return result, err
	}
	latest := reconcile.ScanLatest(headers, s.grid.Cols(), FixedCols)

	dates := make([]string, len(periods))
	for i, p := range periods {
		dates[i] = p.date
	}
	n := reconcile.UnrecordedCount(latest, dates)
	s.log(ctx).Debug("backfill",
		zap.String("latest_date", latest.Date),
		zap.Stringer("latest_genre", latest.Genre),
		zap.Int("latest_offset", latest.Offset),
		zap.Int("unrecorded", n))
	if n == 0 {
		s.printf("%s已是最新\n", label)
		return result, nil
	}

	alloc := reconcile.NewAllocator(latest.Offset)
	for i := n - 1; i >= 0; i-- {
		col, err := alloc.Next(s.grid)
		if err != nil {
			return result, err
		}
		p := periods[i].period()
		s.printf("填寫 %s %s\n", p.Title, periods[i].date)
		report, err := filler.Fill(s.grid, col, r, p, s.progress(p.Title))
		if err != nil {
			return result, fmt.Errorf("fill %s: %w", periods[i].date, err)
		}
		s.warn(ctx, report)
		result.Warnings = append(result.Warnings, report.Warnings...)
		result.Recorded++
	}
	result.Inserted = alloc.Inserted
	return result, s.save()
}

// UpdateRacelog 补录河流竞赛记录
func (s *Service) UpdateRacelog(ctx context.Context) (BackfillResult, error) {
	r, err := s.readRoster()
	if err != nil {
		return BackfillResult{}, err
	}
	races, err := s.src.Racelog(ctx, 0)
	if err != nil {
		s.log(ctx).Warn("fetch racelog failed", zap.Error(err))
		s.printf("無法取得河流競賽紀錄\n")
		return BackfillResult{}, err
	}
	if len(races) == 0 {
		s.printf("沒有河流競賽紀錄\n")
		return BackfillResult{}, ErrNoData
	}

	clanTag := s.src.ClanTag()
	periods := make([]dated, 0, len(races))
	for _, race := range races {
		race := race
		date, err := timeutil.LocalDateToken(race.CreatedDate, s.opts.Location)
		if err != nil {
			return BackfillResult{}, err
		}
		periods = append(periods, dated{date: date, period: func() filler.Period {
			return s.racePeriod(race, date, clanTag)
		}})
	}
	return s.backfill(ctx, r, periods, "河流競賽紀錄")
}

func (s *Service) racePeriod(race crapi.RiverRace, date, clanTag string) filler.Period {
	p := filler.Period{
		Title:      "部落戰 " + strconv.Itoa(race.SeasonID) + "-" + strconv.Itoa(race.Week()),
		Annotation: reconcile.WarAnnotation(date),
		Color:      grid.ColorPink,
	}
	standing, ok := race.Standing(clanTag)
	if !ok {
		return p
	}
	entries := make([]filler.FameEntry, 0, len(standing.Clan.Participants))
	for _, rp := range standing.Clan.Participants {
		entries = append(entries, filler.FameEntry{
			Tag:  rp.Tag,
			Name: rp.Name,
			FameStats: filler.FameStats{
				Fame:         rp.Fame,
				RepairPoints: rp.RepairPoints,
				DecksUsed:    rp.DecksUsed,
			},
		})
	}
	p.Records = filler.RaceRecords(entries, s.opts.Secondary)
	return p
}

// UpdateWarlog 补录旧版部落战记录
func (s *Service) UpdateWarlog(ctx context.Context) (BackfillResult, error) {
	r, err := s.readRoster()
	if err != nil {
		return BackfillResult{}, err
	}
	wars, err := s.src.Warlog(ctx, 0)
	if err != nil {
		s.log(ctx).Warn("fetch warlog failed", zap.Error(err))
		s.printf("無法取得部落戰紀錄\n")
		return BackfillResult{}, err
	}
	if len(wars) == 0 {
		s.printf("沒有部落戰紀錄\n")
		return BackfillResult{}, ErrNoData
	}

	periods := make([]dated, 0, len(wars))
	for _, war := range wars {
		war := war
		created, err := timeutil.Parse(war.CreatedDate)
		if err != nil {
			return BackfillResult{}, err
		}
		date := timeutil.DateToken(created, s.opts.Location)
		title := "部落戰 " + timeutil.MonthDay(created.In(s.opts.Location))
		periods = append(periods, dated{date: date, period: func() filler.Period {
			return warPeriod(war, title, date)
		}})
	}
	return s.backfill(ctx, r, periods, "部落戰紀錄")
}

func warPeriod(war crapi.War, title, date string) filler.Period {
	entries := make([]filler.WarEntry, 0, len(war.Participants))
	for _, wp := range war.Participants {
		entries = append(entries, filler.WarEntry{
			Tag:  wp.Tag,
			Name: wp.Name,
			WarStats: filler.WarStats{
				CardsEarned:                wp.CardsEarned,
				BattlesPlayed:              wp.BattlesPlayed,
				Wins:                       wp.Wins,
				CollectionDayBattlesPlayed: wp.CollectionDayBattlesPlayed,
			},
		})
	}
	return filler.Period{
		Title:      title,
		Annotation: reconcile.WarAnnotation(date),
		Color:      grid.ColorPink,
		Records:    filler.WarRecords(entries),
	}
}
