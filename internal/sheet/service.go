// Package sheet 把 API 数据同步到统计表：名单、最高奖杯、部落战与捐赠记录。
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"clanstat/internal/crapi"
	"clanstat/internal/filler"
	"clanstat/internal/grid"
	"clanstat/internal/logging"
	"clanstat/internal/roster"
)

// 固定表头
const (
	HeaderName         = "帳號"
	HeaderTag          = roster.TagHeader
	HeaderBestTrophies = "最高盃數"
	HeaderRole         = "職位"
	RoleLegend         = "首領 3\n副首 2\n長老 1\n成員 0"
)

// FixedCols 名单固定列数
const FixedCols = 4

// HeaderRow 表头所在行
const HeaderRow = 1

// ErrNoData API 没有返回可用数据
var ErrNoData = errors.New("沒有可用的資料")

// ErrNotInitialized 表格尚未初始化
var ErrNotInitialized = errors.New("表格尚未初始化，請先執行 init")

// Source 同步所需的 API
type Source interface {
	ClanTag() string
	Members(ctx context.Context) ([]crapi.Member, error)
	Warlog(ctx context.Context, limit int) ([]crapi.War, error)
	Racelog(ctx context.Context, limit int) ([]crapi.RiverRace, error)
}

// Options 服务参数
type Options struct {
	Secondary filler.Secondary
	// Location 日期标记的时区，默认本地时区
	Location *time.Location
	Now      func() time.Time
	Out      io.Writer
	Logger   *zap.Logger
}

// Service 统计表同步服务
type Service struct {
	grid   grid.Grid
	src    Source
	opts   Options
	logger *zap.Logger
}

// NewService 创建服务
func NewService(g grid.Grid, src Source, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{grid: g, src: src, opts: opts, logger: logger}
}

// log 优先使用命令携带的 logger
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.logger)
}

func (s *Service) printf(format string, args ...any) {
	fmt.Fprintf(s.opts.Out, format, args...)
}

func (s *Service) readRoster() (*roster.Roster, error) {
	r, err := roster.Read(s.grid)
	if err != nil {
		if errors.Is(err, roster.ErrNoTagHeader) {
			return nil, fmt.Errorf("%w: %v", ErrNotInitialized, err)
		}
		return nil, err
	}
	if s.grid.Cols() <= FixedCols {
		return nil, ErrNotInitialized
	}
	return r, nil
}

func (s *Service) members(ctx context.Context) ([]crapi.Member, map[string]crapi.Member, error) {
	members, err := s.src.Members(ctx)
	var incomplete *crapi.IncompleteError
	if errors.As(err, &incomplete) && members != nil {
		// 查询失败的成员以目前奖杯数作为最高奖杯的下限
		failed := make(map[string]bool, len(incomplete.Tags))
		for _, tag := range incomplete.Tags {
			failed[tag] = true
		}
		for i := range members {
			if failed[members[i].Tag] && members[i].BestTrophies < members[i].Trophies {
				members[i].BestTrophies = members[i].Trophies
			}
		}
		s.log(ctx).Warn("best trophies incomplete", zap.Strings("tags", incomplete.Tags), zap.Error(incomplete.Err))
		s.printf("警告：%d 位成員無法取得最高盃數，暫以目前盃數代替\n", len(incomplete.Tags))
		err = nil
	}
	if err != nil {
		s.log(ctx).Warn("fetch members failed", zap.Error(err))
		s.printf("無法取得成員列表\n")
		return nil, nil, err
	}
	if len(members) == 0 {
		s.printf("沒有可顯示的成員\n")
		return nil, nil, ErrNoData
	}
	byTag := make(map[string]crapi.Member, len(members))
	for _, m := range members {
		byTag[m.Tag] = m
	}
	return members, byTag, nil
}

func (s *Service) save() error {
	if err := s.grid.Save(); err != nil {
		return fmt.Errorf("save sheet: %w", err)
	}
	return nil
}

func (s *Service) progress(label string) func(filler.ProgressEvent) {
	return func(e filler.ProgressEvent) {
		s.printf("\r%s %d/%d", label, e.Done, e.Total)
		if e.Done == e.Total {
			s.printf("\n")
		}
	}
}

func (s *Service) warn(ctx context.Context, report filler.FillReport) {
	for _, w := range report.Warnings {
		s.log(ctx).Warn("member not in roster", zap.String("tag", w.Tag), zap.String("name", w.Name))
		s.printf("警告：成員 %s (%s) 不在表格中\n", w.Name, w.Tag)
	}
}

// Init 设置固定表头、列宽与冻结列，然后加入成员
func (s *Service) Init(ctx context.Context) (MemberChanges, error) {
	g := s.grid
	headers := []string{HeaderName, HeaderTag, HeaderBestTrophies, HeaderRole}
	for i, h := range headers {
		col := i + 1
		if err := g.SetValue(HeaderRow, col, h); err != nil {
			return MemberChanges{}, err
		}
		if err := g.SetColor(HeaderRow, col, grid.ColorGrey); err != nil {
			return MemberChanges{}, err
		}
	}
	if err := g.SetNote(HeaderRow, FixedCols, RoleLegend); err != nil {
		return MemberChanges{}, err
	}

	widths := map[int]int{1: 120, 3: 60, 4: 60}
	for col, px := range widths {
		if err := g.SetColWidth(col, px); err != nil {
			return MemberChanges{}, err
		}
	}
	if err := g.FreezeCols(FixedCols); err != nil {
		return MemberChanges{}, err
	}
	s.log(ctx).Info("sheet initialized", zap.Int("cols", g.Cols()))

	return s.UpdateMembers(ctx)
}
