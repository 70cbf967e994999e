// Package console 交互式命令行：读取一行，按空白切分后分派。
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"clanstat/internal/logging"
	"clanstat/internal/sheet"
)

// Status 命令执行结果
type Status int

const (
	StatusOK Status = iota + 1
	StatusFail
	StatusQuit
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFail:
		return "FAIL"
	case StatusQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// Prompt 提示符
const Prompt = ">> "

// Banner 启动标题
const Banner = "CR Clan Statistics Managing System"

const cmdHelp = "Commands\n" +
	"    init          Initialize (setup) the sheet\n" +
	"    update        Update content of sheet\n" +
	"    show          Show information of clan\n" +
	"    quit          Quit\n"

const showHelp = "Show (show)\n" +
	"    members               Show all clan members\n" +
	"    warlog [count]        Show warlog (specified number)\n" +
	"    racelog [count]       Show river race log (specified number)\n" +
	"    race                  Show current river race\n"

const updateHelp = "Update (update)\n" +
	"    members               Update members of clan\n" +
	"    trophy                Update trophies of members\n" +
	"    warlog                Update warlog\n" +
	"    racelog               Update river race log\n" +
	"    donation [date]       Update donations of members (specified date, MM/DD)\n"

// Updater 写表命令
type Updater interface {
	Init(ctx context.Context) (sheet.MemberChanges, error)
	UpdateMembers(ctx context.Context) (sheet.MemberChanges, error)
	UpdateTrophies(ctx context.Context) (sheet.TrophyChanges, error)
	UpdateWarlog(ctx context.Context) (sheet.BackfillResult, error)
	UpdateRacelog(ctx context.Context) (sheet.BackfillResult, error)
	UpdateDonations(ctx context.Context, date string) (sheet.DonationResult, error)
}

// Shower 报表命令
type Shower interface {
	Members(ctx context.Context) error
	Warlog(ctx context.Context, limit int) error
	Racelog(ctx context.Context, limit int) error
	Race(ctx context.Context) error
}

// Console 命令分派器
type Console struct {
	update Updater
	show   Shower
	out    io.Writer
	logger *zap.Logger
}

// New 创建分派器
func New(update Updater, show Shower, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{update: update, show: show, out: out, logger: logger}
}

// Run 循环读取命令，直到 quit 或输入结束
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, Banner)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if c.Handle(ctx, strings.Fields(scanner.Text())) == StatusQuit {
			return nil
		}
	}
}

// Handle 执行一条命令
func (c *Console) Handle(ctx context.Context, tokens []string) Status {
	if len(tokens) == 0 {
		fmt.Fprint(c.out, cmdHelp)
		return StatusFail
	}

	switch tokens[0] {
	case "init":
		return c.exec(ctx, tokens, func(ctx context.Context) error {
			_, err := c.update.Init(ctx)
			return err
		})
	case "update":
		return c.handleUpdate(ctx, tokens)
	case "show":
		return c.handleShow(ctx, tokens)
	case "quit":
		return StatusQuit
	default:
		fmt.Fprint(c.out, cmdHelp)
		return StatusFail
	}
}

func (c *Console) handleUpdate(ctx context.Context, tokens []string) Status {
	if len(tokens) < 2 {
		fmt.Fprint(c.out, updateHelp)
		return StatusFail
	}

	var run func(ctx context.Context) error
	switch tokens[1] {
	case "members":
		run = func(ctx context.Context) error {
			_, err := c.update.UpdateMembers(ctx)
			return err
		}
	case "trophy":
		run = func(ctx context.Context) error {
			_, err := c.update.UpdateTrophies(ctx)
			return err
		}
	case "warlog":
		run = func(ctx context.Context) error {
			_, err := c.update.UpdateWarlog(ctx)
			return err
		}
	case "racelog":
		run = func(ctx context.Context) error {
			_, err := c.update.UpdateRacelog(ctx)
			return err
		}
	case "donation":
		date := ""
		if len(tokens) > 2 {
			date = tokens[2]
		}
		run = func(ctx context.Context) error {
			_, err := c.update.UpdateDonations(ctx, date)
			return err
		}
	default:
		fmt.Fprint(c.out, updateHelp)
		return StatusFail
	}
	return c.exec(ctx, tokens, run)
}

func (c *Console) handleShow(ctx context.Context, tokens []string) Status {
	if len(tokens) < 2 {
		fmt.Fprint(c.out, showHelp)
		return StatusFail
	}

	switch tokens[1] {
	case "members":
		return c.exec(ctx, tokens, c.show.Members)
	case "race":
		return c.exec(ctx, tokens, c.show.Race)
	case "warlog", "racelog":
		limit := 0
		if len(tokens) > 2 {
			n, err := strconv.Atoi(tokens[2])
			if err != nil || n < 0 {
				fmt.Fprint(c.out, showHelp)
				return StatusFail
			}
			limit = n
		}
		show := c.show.Warlog
		if tokens[1] == "racelog" {
			show = c.show.Racelog
		}
		return c.exec(ctx, tokens, func(ctx context.Context) error {
			return show(ctx, limit)
		})
	default:
		fmt.Fprint(c.out, showHelp)
		return StatusFail
	}
}

// exec 以带 run id 的 logger 执行命令；失败只影响本次命令
func (c *Console) exec(ctx context.Context, tokens []string, run func(ctx context.Context) error) Status {
	logger, _ := logging.WithRun(c.logger, strings.Join(tokens, " "))
	start := time.Now()
	logger.Debug("command started")

	if err := run(logging.IntoContext(ctx, logger)); err != nil {
		logger.Warn("command failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		fmt.Fprintf(c.out, "錯誤：%v\n", err)
		return StatusFail
	}
	logger.Info("command finished", zap.Duration("elapsed", time.Since(start)))
	return StatusOK
}
