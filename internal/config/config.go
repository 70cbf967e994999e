package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 环境变量名
const (
	EnvToken    = "CRAPI_TOKEN"
	EnvEmail    = "CRAPI_EMAIL"
	EnvPassword = "CRAPI_PASSWORD"
	EnvClanTag  = "CR_CLAN_TAG"
)

// DefaultConfigName 默认配置文件名
const DefaultConfigName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	API   APIConfig   `toml:"api"`
	Sheet SheetConfig `toml:"sheet"`
	Race  RaceConfig  `toml:"race"`
	Env   EnvConfig   `toml:"env"`
	Log   LogConfig   `toml:"log"`

	// Dir 配置文件所在目录，相对路径以此为基准
	Dir string `toml:"-"`
}

// APIConfig 游戏 API 与开发者平台
type APIConfig struct {
	APIURI         string `toml:"api_uri" json:"api_uri"`
	Version        string `toml:"version" json:"version"`
	DevURI         string `toml:"dev_uri" json:"dev_uri"`
	IPEchoURI      string `toml:"ip_echo_uri" json:"ip_echo_uri"`
	TimeoutSeconds int    `toml:"timeout_seconds" json:"timeout_seconds"`
}

// SheetConfig 表格配置
type SheetConfig struct {
	Path     string `toml:"path"`
	Index    int    `toml:"index"`
	TimeZone string `toml:"time_zone"`
}

// RaceConfig 河流竞赛记录配置
type RaceConfig struct {
	// Secondary 括号内数值：repairPoints 或 decksUsed
	Secondary string `toml:"secondary"`
}

// EnvConfig 凭证文件
type EnvConfig struct {
	Path string `toml:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path   string
	Found  bool
	Legacy bool
}

// Credentials .env 中的凭证
type Credentials struct {
	Token    string
	Email    string
	Password string
	ClanTag  string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			APIURI:         "https://api.clashroyale.com",
			Version:        "v1",
			DevURI:         "https://developer.clashroyale.com/api",
			IPEchoURI:      "https://ipecho.net/plain",
			TimeoutSeconds: 15,
		},
		Sheet: SheetConfig{
			Path:  "clanstat.xlsx",
			Index: 0,
		},
		Race: RaceConfig{
			Secondary: "repairPoints",
		},
		Env: EnvConfig{
			Path: ".env",
		},
		Log: LogConfig{
			Level: "info",
		},
		Dir: ".",
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 加载配置并返回元信息。
// path 为空时读取可执行文件同目录下的 config.toml；.json 后缀按旧版 crapi.json 解析。
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	config := DefaultConfig()

	if path == "" {
		exeDir, err := GetExeDir()
		if err != nil {
			// 无法获取可执行文件目录，使用当前目录
			exeDir = "."
		}
		path = filepath.Join(exeDir, DefaultConfigName)
	}
	info := LoadConfigInfo{Path: path}
	config.Dir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			return config, info, nil
		}
		return nil, info, err
	}
	info.Found = true

	if strings.EqualFold(filepath.Ext(path), ".json") {
		info.Legacy = true
		if err := json.Unmarshal(data, &config.API); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, fmt.Errorf("parse %s: %w", path, err)
	}

	if config.API.Version == "" {
		config.API.Version = "v1"
	}
	return config, info, nil
}

// SaveConfig 保存配置到 path
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve 相对路径以配置目录为基准
func (c *AppConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// APIBaseURL 游戏 API 地址，含版本
func (c *AppConfig) APIBaseURL() string {
	return strings.TrimRight(c.API.APIURI, "/") + "/" + c.API.Version
}

// Timeout 请求超时
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Location 表格日期使用的时区，未配置时为本地时区
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Sheet.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Sheet.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.Sheet.TimeZone, err)
	}
	return loc, nil
}

// LoadCredentials 读取凭证；.env 中的值覆盖进程环境变量
func LoadCredentials(envPath string) (Credentials, error) {
	values, err := godotenv.Read(envPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("read %s: %w", envPath, err)
		}
		values = map[string]string{}
	}
	lookup := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return os.Getenv(key)
	}
	return Credentials{
		Token:    lookup(EnvToken),
		Email:    lookup(EnvEmail),
		Password: lookup(EnvPassword),
		ClanTag:  lookup(EnvClanTag),
	}, nil
}

// SaveToken 把新 token 写回 .env，保留其余键
func SaveToken(envPath, token string) error {
	values, err := godotenv.Read(envPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", envPath, err)
		}
		values = map[string]string{}
	}
	values[EnvToken] = token
	if err := godotenv.Write(values, envPath); err != nil {
		return fmt.Errorf("write %s: %w", envPath, err)
	}
	return nil
}
