package sheet

import (
	"context"

	"go.uber.org/zap"

	"clanstat/internal/filler"
	"clanstat/internal/grid"
	"clanstat/internal/reconcile"
	"clanstat/internal/timeutil"
)

// DonationResult 捐赠统计结果
type DonationResult struct {
	Column   int
	Reused   bool
	Inserted bool
	Warnings []filler.Warning
}

// UpdateDonations 记录捐赠数。date 为 "MM/DD"（今年），为空时取今天；
// 同一天再次执行会覆盖同一列。
func (s *Service) UpdateDonations(ctx context.Context, date string) (DonationResult, error) {
	var result DonationResult

	now := s.opts.Now().In(s.opts.Location)
	day := now
	if date != "" {
		t, err := timeutil.ParseMonthDay(date, now)
		if err != nil {
			return result, err
		}
		day = t
	}
	full := timeutil.DateToken(day, s.opts.Location)
	short := timeutil.MonthDay(day)

	r, err := s.readRoster()
	if err != nil {
		return result, err
	}
	members, _, err := s.members(ctx)
	if err != nil {
		return result, err
	}

	headers, err := reconcile.Headers(s.grid, r.HeaderRow)
	if err != nil {
		return result, err
	}
	decision := reconcile.ResolveTargetColumn(headers, s.grid.Cols(), FixedCols, full, reconcile.GenreDonate)
	col, inserted, err := reconcile.Column(s.grid, decision)
	if err != nil {
		return result, err
	}
	result.Column = col
	result.Reused = decision.Reuse
	result.Inserted = inserted
	s.log(ctx).Debug("donation column",
		zap.String("date", full),
		zap.Int("col", col),
		zap.Bool("reuse", decision.Reuse),
		zap.Bool("inserted", inserted))

	records := make([]filler.Record, 0, len(members))
	for _, m := range members {
		records = append(records, filler.Record{
			Tag:   m.Tag,
			Name:  m.Name,
			Value: filler.FormatDonation(m.Donations),
		})
	}
	period := filler.Period{
		Title:      "捐贈 " + short,
		Annotation: reconcile.DonateAnnotation(full),
		Color:      grid.ColorSkin,
		Records:    records,
	}

	s.printf("更新捐贈 %s\n", short)
	report, err := filler.Fill(s.grid, col, r, period, s.progress(period.Title))
	if err != nil {
		return result, err
	}
	s.warn(ctx, report)
	result.Warnings = report.Warnings
	return result, s.save()
}
