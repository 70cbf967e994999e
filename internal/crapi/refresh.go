package crapi

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"clanstat/internal/api"
	"clanstat/internal/config"
)

// MaxKeys 开发者平台每个账号最多保留的 key 数
const MaxKeys = 10

// KeyNamePrefix 新建 key 的名称前缀
const KeyNamePrefix = "CR Manager "

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type keyList struct {
	Keys []APIKey `json:"keys"`
}

type revokeRequest struct {
	ID string `json:"id"`
}

type createKeyRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CidrRanges  []string `json:"cidrRanges"`
	Scopes      []string `json:"scopes"`
}

type createKeyResponse struct {
	Key APIKey `json:"key"`
}

// RefreshToken 登录开发者平台，为当前公网 IP 建立新 key，写回 .env 并立即生效
func (c *Client) RefreshToken(ctx context.Context) error {
	creds := c.opts.Credentials
	if creds.Email == "" || creds.Password == "" {
		return errors.New("缺少開發者平台帳號 (CRAPI_EMAIL / CRAPI_PASSWORD)")
	}

	dev, err := api.NewSession(c.opts.DevURL, c.opts.Timeout)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Post(ctx, "/login", loginRequest{Email: creds.Email, Password: creds.Password}, nil); err != nil {
		return c.refreshFailed(ctx, "login", err)
	}

	ip, err := api.ExternalIP(ctx, dev.HTTPClient(), c.opts.IPEchoURL)
	if err != nil {
		return c.refreshFailed(ctx, "external ip", err)
	}

	var list keyList
	if err := dev.Post(ctx, "/apikey/list", nil, &list); err != nil {
		return c.refreshFailed(ctx, "list keys", err)
	}
	if len(list.Keys) >= MaxKeys {
		last := list.Keys[len(list.Keys)-1]
		if err := dev.Post(ctx, "/apikey/revoke", revokeRequest{ID: last.ID}, nil); err != nil {
			return c.refreshFailed(ctx, "revoke key", err)
		}
		c.log(ctx).Info("revoked api key", zap.String("id", last.ID), zap.String("name", last.Name))
	}

	var created createKeyResponse
	req := createKeyRequest{
		Name:        KeyNamePrefix + c.now().Format("20060102"),
		Description: "For single IP address",
		CidrRanges:  []string{ip},
	}
	if err := dev.Post(ctx, "/apikey/create", req, &created); err != nil {
		return c.refreshFailed(ctx, "create key", err)
	}
	if created.Key.Key == "" {
		return errors.New("開發者平台未回傳 key")
	}

	if c.opts.EnvPath != "" {
		if err := config.SaveToken(c.opts.EnvPath, created.Key.Key); err != nil {
			return err
		}
	}
	c.opts.Credentials.Token = created.Key.Key
	c.session.SetJWT(created.Key.Key)
	c.log(ctx).Info("api token refreshed", zap.String("name", req.Name), zap.String("ip", ip))
	return nil
}

func (c *Client) refreshFailed(ctx context.Context, step string, err error) error {
	var se *api.StatusError
	if errors.As(err, &se) {
		c.log(ctx).Warn("refresh request failed",
			zap.String("step", step),
			zap.Int("status", se.Status),
			zap.String("payload", se.Payload))
	}
	return fmt.Errorf("%s: %w", step, err)
}
