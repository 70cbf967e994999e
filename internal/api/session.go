// Package api 封装带 JWT 的 HTTP JSON 会话。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout 单次请求超时
const DefaultTimeout = 15 * time.Second

// StatusError 非 2xx 响应
type StatusError struct {
	Status  int
	Payload string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Payload)
}

// IsStatus 判断 err 是否为指定状态码的 StatusError
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// Session 保存 base URL、JWT 与 cookie 的会话
type Session struct {
	baseURL string
	jwt     string
	client  *http.Client
}

// NewSession 创建会话；timeout 为 0 时使用 DefaultTimeout
func NewSession(baseURL string, timeout time.Duration) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// SetJWT 设置 Bearer token
func (s *Session) SetJWT(jwt string) {
	s.jwt = jwt
}

// HTTPClient 底层 client，共享 cookie
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// Close 关闭空闲连接
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

// Get 发送 GET 并把 JSON 响应解码到 out（out 可为 nil）
func (s *Session) Get(ctx context.Context, query string, out any) error {
	return s.do(ctx, http.MethodGet, query, nil, out)
}

// Post 以 JSON 发送 body（可为 nil）并解码响应
func (s *Session) Post(ctx context.Context, query string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request %s: %w", query, err)
		}
		r = bytes.NewReader(data)
	}
	return s.do(ctx, http.MethodPost, query, r, out)
}

func (s *Session) do(ctx context.Context, method, query string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+query, body)
	if err != nil {
		return fmt.Errorf("build request %s: %w", query, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+s.jwt)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, query, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", query, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Payload: strings.TrimSpace(string(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response %s: %w", query, err)
	}
	return nil
}

// ExternalIP 通过回显服务取得本机公网 IP
func ExternalIP(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build ip request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query external ip: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read external ip: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Status: resp.StatusCode, Payload: strings.TrimSpace(string(data))}
	}
	ip := strings.TrimSpace(string(data))
	if ip == "" {
		return "", errors.New("empty external ip")
	}
	return ip, nil
}
