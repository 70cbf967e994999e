// Package report 在终端输出部落成员、部落战与河流竞赛报表。
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"clanstat/internal/crapi"
	"clanstat/internal/logging"
	"clanstat/internal/textwidth"
	"clanstat/internal/timeutil"
)

// ErrEmpty 没有可显示的数据
var ErrEmpty = errors.New("沒有可顯示的資料")

const ruleWidth = 56

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	ownStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
)

var roleNames = map[string]string{
	crapi.RoleLeader:   "首領",
	crapi.RoleCoLeader: "副首",
	crapi.RoleElder:    "長老",
	crapi.RoleMember:   "成員",
}

// Source 报表所需的 API
type Source interface {
	ClanTag() string
	MemberList(ctx context.Context) ([]crapi.Member, error)
	Warlog(ctx context.Context, limit int) ([]crapi.War, error)
	Racelog(ctx context.Context, limit int) ([]crapi.RiverRace, error)
	CurrentRace(ctx context.Context) (*crapi.CurrentRace, error)
}

// Options 报表参数
type Options struct {
	Out      io.Writer
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

// Printer 报表输出
type Printer struct {
	src    Source
	opts   Options
	logger *zap.Logger
}

// NewPrinter 创建报表输出
func NewPrinter(src Source, opts Options) *Printer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Printer{src: src, opts: opts, logger: logger}
}

func (p *Printer) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, p.logger)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.opts.Out, format, args...)
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.opts.Out, s)
}

func (p *Printer) rule(ch string) {
	p.println(strings.Repeat(ch, ruleWidth))
}

func (p *Printer) localDate(s string) string {
	date, err := timeutil.LocalDateToken(s, p.opts.Location)
	if err != nil {
		return ""
	}
	return date
}

func (p *Printer) finishDate(s string) string {
	if date := p.localDate(s); date != "" {
		return date
	}
	return "未完成"
}

func (p *Printer) unavailable(ctx context.Context, what string, err error) error {
	p.log(ctx).Warn("fetch failed", zap.String("report", what), zap.Error(err))
	p.printf("沒有可顯示的%s\n", what)
	return err
}

// Members 成员列表，含职位统计与离线时长
func (p *Printer) Members(ctx context.Context) error {
	members, err := p.src.MemberList(ctx)
	if err != nil {
		return p.unavailable(ctx, "成員", err)
	}
	if len(members) == 0 {
		p.println("沒有可顯示的成員")
		return ErrEmpty
	}

	now := p.opts.Now().UTC()
	p.println(titleStyle.Render(fmt.Sprintf("部落成員，共 %d 名", len(members))))
	p.println(textwidth.Left("排名", 6) +
		textwidth.Left("名字", 32) +
		textwidth.Left("職位", 6) +
		textwidth.Left("獎盃", 6) +
		textwidth.Right("上線", 6))
	p.rule("=")

	counts := map[string]int{}
	for _, m := range members {
		counts[m.Role]++
		role, ok := roleNames[m.Role]
		if !ok {
			role = m.Role
		}
		lastSeen := ""
		if t, err := timeutil.Parse(m.LastSeen); err == nil {
			lastSeen = timeutil.Rounded(now.Sub(t))
		}
		p.println(textwidth.Left(strconv.Itoa(m.ClanRank), 6) +
			textwidth.Left(m.Name, 32) +
			textwidth.Left(role, 6) +
			textwidth.Left(strconv.Itoa(m.Trophies), 6) +
			textwidth.Right(lastSeen, 6))
	}
	p.printf("首領:%s 位\n", textwidth.Right(strconv.Itoa(counts[crapi.RoleLeader]), 6))
	p.printf("副首:%s 位\n", textwidth.Right(strconv.Itoa(counts[crapi.RoleCoLeader]), 6))
	p.printf("長老:%s 位\n", textwidth.Right(strconv.Itoa(counts[crapi.RoleElder]), 6))
	return nil
}

// Warlog 旧版部落战记录，旧到新
func (p *Printer) Warlog(ctx context.Context, limit int) error {
	wars, err := p.src.Warlog(ctx, limit)
	if err != nil {
		return p.unavailable(ctx, "部落戰紀錄", err)
	}
	if len(wars) == 0 {
		p.println("沒有部落戰紀錄")
		return ErrEmpty
	}

	early := p.localDate(wars[len(wars)-1].CreatedDate)
	late := p.localDate(wars[0].CreatedDate)
	p.println(titleStyle.Render(fmt.Sprintf("部落戰紀錄 %s ~ %s，共 %d 筆", early, late, len(wars))))
	p.rule("=")

	clanTag := p.src.ClanTag()
	for i := len(wars) - 1; i >= 0; i-- {
		war := wars[i]
		trophyChange := 0
		if s, ok := war.Standing(clanTag); ok {
			trophyChange = s.TrophyChange
		}
		p.printf("部落戰 %s\n", p.localDate(war.CreatedDate))
		p.printf("獎盃： %d\n", trophyChange)
		p.printf("參加人數： %d\n", len(war.Participants))
		p.printf("名單：")
		for j, wp := range war.Participants {
			if j%3 == 0 {
				p.printf("\n\t")
			}
			p.printf("%s", textwidth.Left(wp.Name, 20))
		}
		p.printf("\n")
		p.rule("=")
	}
	return nil
}

func (p *Printer) participants(list []crapi.RaceParticipant) {
	sorted := make([]crapi.RaceParticipant, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fame > sorted[j].Fame })

	const perLine = 2
	for i, rp := range sorted {
		if i%perLine == 0 {
			if i > 0 {
				p.printf("\n")
			}
			p.printf("  ")
		}
		stat := fmt.Sprintf("(%d / %d)", rp.Fame, rp.DecksUsed)
		p.printf("%s %s  ", textwidth.Left(rp.Name, 20), textwidth.Right(stat, 16))
	}
	p.printf("\n")
}

// Racelog 河流竞赛记录，旧到新
func (p *Printer) Racelog(ctx context.Context, limit int) error {
	races, err := p.src.Racelog(ctx, limit)
	if err != nil {
		return p.unavailable(ctx, "河流競賽紀錄", err)
	}
	if len(races) == 0 {
		p.println("沒有河流競賽紀錄")
		return ErrEmpty
	}

	early := p.localDate(races[len(races)-1].CreatedDate)
	late := p.localDate(races[0].CreatedDate)
	p.println(titleStyle.Render(fmt.Sprintf("河流競賽紀錄 %s ~ %s，共 %d 筆", early, late, len(races))))
	p.rule("=")

	clanTag := p.src.ClanTag()
	for i := len(races) - 1; i >= 0; i-- {
		race := races[i]
		p.printf("河流競賽 %d-%d\n", race.SeasonID, race.Week())
		standing, ok := race.Standing(clanTag)
		if !ok {
			p.printf("結束日期： %s\n", p.localDate(race.CreatedDate))
			p.println("未參加")
			p.rule("=")
			continue
		}
		p.printf("完成日期： %s\n", p.finishDate(standing.Clan.FinishTime))
		p.printf("結束日期： %s\n", p.localDate(race.CreatedDate))
		p.printf("名次： %d\n", standing.Rank)
		p.printf("獎盃： %d\n", standing.TrophyChange)
		p.printf("名譽： %d\n", standing.Clan.Fame)
		p.printf("參加人數： %d\n", len(standing.Clan.Participants))
		p.println("名單 (名譽/次數)：")
		p.participants(standing.Clan.Participants)
		p.rule("=")
	}
	return nil
}

func (p *Printer) raceClan(c crapi.RaceClan) string {
	return textwidth.Left(fmt.Sprintf("%s (%d)", c.Name, c.ClanScore), 24) +
		textwidth.Right(strconv.Itoa(c.Fame), 8) +
		textwidth.Right(p.finishDate(c.FinishTime), 12)
}

// Race 进行中的河流竞赛：其他部落、本部落与成员贡献
func (p *Printer) Race(ctx context.Context) error {
	race, err := p.src.CurrentRace(ctx)
	if err != nil {
		p.log(ctx).Warn("fetch failed", zap.String("report", "race"), zap.Error(err))
		p.println("沒有正在進行的部落戰")
		return err
	}

	clanTag := p.src.ClanTag()
	p.println(titleStyle.Render(fmt.Sprintf("河流競賽 Week %d", race.Week())))
	p.println(textwidth.Left("部落 (獎盃)", 24) +
		textwidth.Right("名譽值", 8) +
		textwidth.Right("完成時間", 12))
	p.rule("=")
	for _, c := range race.Clans {
		if c.Tag == clanTag {
			continue
		}
		p.println(p.raceClan(c))
	}
	p.println(ownStyle.Render(p.raceClan(race.Clan)))
	p.rule("-")
	p.println("名單 (名譽/次數)：")
	p.participants(race.Clan.Participants)
	return nil
}
