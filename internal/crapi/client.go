// Package crapi 皇室战争 API 客户端。
package crapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"clanstat/internal/api"
	"clanstat/internal/config"
	"clanstat/internal/logging"
)

// ErrNoClanTag 未配置部落标签
var ErrNoClanTag = errors.New("未設定部落標籤 (CR_CLAN_TAG)")

// Options 客户端参数
type Options struct {
	BaseURL     string
	DevURL      string
	IPEchoURL   string
	Timeout     time.Duration
	Credentials config.Credentials
	// EnvPath 刷新后的 token 写回此文件
	EnvPath string
	Logger  *zap.Logger
	// Now 默认 time.Now
	Now func() time.Time
}

// Client 游戏 API 客户端，整个进程只创建一个
type Client struct {
	session *api.Session
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

// NewFromConfig 按配置与凭证创建客户端
func NewFromConfig(cfg *config.AppConfig, creds config.Credentials, logger *zap.Logger) (*Client, error) {
	return New(Options{
		BaseURL:     cfg.APIBaseURL(),
		DevURL:      cfg.API.DevURI,
		IPEchoURL:   cfg.API.IPEchoURI,
		Timeout:     cfg.Timeout(),
		Credentials: creds,
		EnvPath:     cfg.Resolve(cfg.Env.Path),
		Logger:      logger,
	})
}

// New 创建客户端
func New(opts Options) (*Client, error) {
	session, err := api.NewSession(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	session.SetJWT(opts.Credentials.Token)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{session: session, opts: opts, logger: logger, now: now}, nil
}

// Close 释放连接
func (c *Client) Close() {
	c.session.Close()
}

// ClanTag 部落标签
func (c *Client) ClanTag() string {
	return c.opts.Credentials.ClanTag
}

// Token 当前使用的 token
func (c *Client) Token() string {
	return c.opts.Credentials.Token
}

func (c *Client) clanPath(suffix string) (string, error) {
	tag := c.ClanTag()
	if tag == "" {
		return "", ErrNoClanTag
	}
	return "/clans/" + url.QueryEscape(tag) + suffix, nil
}

func withLimit(query string, limit int) string {
	if limit > 0 {
		return query + "?limit=" + strconv.Itoa(limit)
	}
	return query
}

// get 403 时刷新 token 并重试一次
func (c *Client) get(ctx context.Context, query string, out any) error {
	err := c.session.Get(ctx, query, out)
	if api.IsStatus(err, http.StatusForbidden) {
		c.log(ctx).Info("token rejected, refreshing", zap.String("query", query))
		if rerr := c.RefreshToken(ctx); rerr != nil {
			return fmt.Errorf("refresh token: %w", rerr)
		}
		err = c.session.Get(ctx, query, out)
	}
	if err != nil {
		c.logRequestError(ctx, query, err)
		return fmt.Errorf("api request %s: %w", query, err)
	}
	return nil
}

func (c *Client) logRequestError(ctx context.Context, query string, err error) {
	var se *api.StatusError
	if errors.As(err, &se) {
		c.log(ctx).Warn("api request failed",
			zap.String("query", query),
			zap.Int("status", se.Status),
			zap.String("payload", se.Payload))
		return
	}
	c.log(ctx).Warn("api request failed", zap.String("query", query), zap.Error(err))
}

func (c *Client) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, c.logger)
}

// MemberList 部落成员列表（不含最高奖杯）
func (c *Client) MemberList(ctx context.Context) ([]Member, error) {
	query, err := c.clanPath("/members")
	if err != nil {
		return nil, err
	}
	var resp memberList
	if err := c.get(ctx, query, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// IncompleteError 部分玩家资料查询失败；成员列表仍然可用，失败者的 BestTrophies 为 0
type IncompleteError struct {
	Tags []string
	// Err 最后一次失败的原因
	Err error
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d 位成員的最高盃數查詢失敗 (%s): %v", len(e.Tags), strings.Join(e.Tags, ", "), e.Err)
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

// Members 部落成员，逐一查询玩家资料补上 BestTrophies。
// 有玩家查询失败时同时返回成员列表与 *IncompleteError。
func (c *Client) Members(ctx context.Context) ([]Member, error) {
	members, err := c.MemberList(ctx)
	if err != nil {
		return nil, err
	}
	var incomplete *IncompleteError
	for i := range members {
		player, err := c.Player(ctx, members[i].Tag)
		if err != nil {
			if incomplete == nil {
				incomplete = &IncompleteError{}
			}
			incomplete.Tags = append(incomplete.Tags, members[i].Tag)
			incomplete.Err = err
			continue
		}
		members[i].BestTrophies = player.BestTrophies
	}
	if incomplete != nil {
		c.log(ctx).Warn("player lookups failed", zap.Strings("tags", incomplete.Tags))
		return members, incomplete
	}
	return members, nil
}

// Player 玩家资料
func (c *Client) Player(ctx context.Context, tag string) (*Player, error) {
	var p Player
	if err := c.get(ctx, "/players/"+url.QueryEscape(tag), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Warlog 旧版部落战记录，新到旧；limit 为 0 时不限
func (c *Client) Warlog(ctx context.Context, limit int) ([]War, error) {
	query, err := c.clanPath("/warlog")
	if err != nil {
		return nil, err
	}
	var resp warlog
	if err := c.get(ctx, withLimit(query, limit), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Racelog 河流竞赛记录，新到旧；limit 为 0 时不限
func (c *Client) Racelog(ctx context.Context, limit int) ([]RiverRace, error) {
	query, err := c.clanPath("/riverracelog")
	if err != nil {
		return nil, err
	}
	var resp racelog
	if err := c.get(ctx, withLimit(query, limit), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CurrentRace 进行中的河流竞赛
func (c *Client) CurrentRace(ctx context.Context) (*CurrentRace, error) {
	query, err := c.clanPath("/currentriverrace")
	if err != nil {
		return nil, err
	}
	var race CurrentRace
	if err := c.get(ctx, query, &race); err != nil {
		return nil, err
	}
	return &race, nil
}
