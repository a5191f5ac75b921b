package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, "https://www.ozon.ru", cfg.BaseURL)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 2, cfg.Retries)
	require.Equal(t, "normal", cfg.DelayProfile)
	require.True(t, cfg.RespectRobots)
	require.False(t, cfg.ArchiveEnabled)

	require.NotEmpty(t, cfg.Headers["user-agent"])
	require.Contains(t, cfg.Headers["accept-language"], "ru")
	require.Equal(t, "1", cfg.Cookies["is_cookies_accepted"])

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OZONSCRAP_BASE_URL", "https://mirror.example")
	t.Setenv("OZONSCRAP_TIMEOUT", "9s")
	t.Setenv("OZONSCRAP_RETRIES", "5")
	t.Setenv("OZONSCRAP_DELAY_PROFILE", "cautious")
	t.Setenv("OZONSCRAP_RESPECT_ROBOTS", "false")
	t.Setenv("OZONSCRAP_ARCHIVE", "true")
	t.Setenv("OZONSCRAP_API_KEY", "secret")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	require.Equal(t, "https://mirror.example", cfg.BaseURL)
	require.Equal(t, 9*time.Second, cfg.Timeout)
	require.Equal(t, 5, cfg.Retries)
	require.Equal(t, "cautious", cfg.DelayProfile)
	require.False(t, cfg.RespectRobots)
	require.True(t, cfg.ArchiveEnabled)
	require.Equal(t, "secret", cfg.APIKey)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"headers": {"user-agent": "rotated-agent", "x-extra": "1"},
		"cookies": {"__Secure-user-id": "42"},
		"save_api_responses": true
	}`), 0o644))

	cfg := DefaultConfig()
	cfg.SettingsFile = path
	require.NoError(t, cfg.LoadSettingsFile())

	require.Equal(t, "rotated-agent", cfg.Headers["user-agent"], "file overrides the default")
	require.Equal(t, "1", cfg.Headers["x-extra"])
	require.Equal(t, "42", cfg.Cookies["__Secure-user-id"])
	require.Equal(t, "1", cfg.Cookies["is_cookies_accepted"], "untouched defaults survive the merge")
	require.True(t, cfg.ArchiveEnabled)
}

func TestLoadSettingsFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SettingsFile = filepath.Join(t.TempDir(), "nope.json")
	require.NoError(t, cfg.LoadSettingsFile(), "a missing settings file is not an error")
}

func TestLoadSettingsFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	cfg := DefaultConfig()
	cfg.SettingsFile = path
	require.Error(t, cfg.LoadSettingsFile())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "not a url"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BaseURL = "/no-scheme"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = 0
	require.Error(t, cfg.Validate())
}
