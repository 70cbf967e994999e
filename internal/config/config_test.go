package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithInfo_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	require.False(t, info.Found)
	require.Equal(t, DefaultConfig().API, cfg.API)
	require.Equal(t, filepath.Dir(path), cfg.Dir)
}

func TestLoadConfigWithInfo_TOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
api_uri = "https://proxy.example/"
version = "v2"

[sheet]
path = "stats.xlsx"
index = 1
time_zone = "Asia/Taipei"

[race]
secondary = "decksUsed"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	require.True(t, info.Found)
	require.False(t, info.Legacy)
	require.Equal(t, "https://proxy.example/v2", cfg.APIBaseURL())
	require.Equal(t, "https://developer.clashroyale.com/api", cfg.API.DevURI)
	require.Equal(t, 1, cfg.Sheet.Index)
	require.Equal(t, "decksUsed", cfg.Race.Secondary)
	require.Equal(t, filepath.Join(dir, "stats.xlsx"), cfg.Resolve(cfg.Sheet.Path))
	require.Equal(t, "/abs/x.xlsx", cfg.Resolve("/abs/x.xlsx"))
}

func TestLoadConfigWithInfo_LegacyJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "crapi.json")
	content := `{"api_uri": "https://api.example", "version": "", "dev_uri": "https://dev.example/api"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	require.True(t, info.Legacy)
	require.Equal(t, "https://api.example/v1", cfg.APIBaseURL())
	require.Equal(t, "https://dev.example/api", cfg.API.DevURI)
	require.Equal(t, "clanstat.xlsx", cfg.Sheet.Path)
}

func TestLoadConfigWithInfo_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\n"), 0644))

	_, _, err := LoadConfigWithInfo(path)
	require.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Sheet.TimeZone = "UTC"
	require.NoError(t, SaveConfig(cfg, path))

	got, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	require.True(t, info.Found)
	require.Equal(t, "UTC", got.Sheet.TimeZone)

	loc, err := got.Location()
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())
}

func TestCredentialsAndSaveToken(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	content := "CRAPI_TOKEN=old\nCRAPI_EMAIL=leader@example.com\nCRAPI_PASSWORD=pw\nCR_CLAN_TAG=\"#8V8CCV\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, "old", creds.Token)
	require.Equal(t, "#8V8CCV", creds.ClanTag)

	require.NoError(t, SaveToken(path, "fresh"))

	creds, err = LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, "fresh", creds.Token)
	require.Equal(t, "leader@example.com", creds.Email)
	require.Equal(t, "#8V8CCV", creds.ClanTag)
}

func TestSaveToken_CreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, SaveToken(path, "new"))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, "new", creds.Token)
}
