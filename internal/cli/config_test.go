package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCapiEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	t.Setenv(EnvBaseURL, "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	clearCapiEnv(t)
	t.Setenv("CAPI_TEST_SECRET", "pass1")
	path := writeFile(t, "config.yaml", `version: 1.1.0
username: user1
password: {{ .ENV.CAPI_TEST_SECRET }}
base_url: http://localhost:8080/api
timeout: 5s
retries: 2
language: en
`)
	require.NoError(t, LoadConfig(path))
	cfg := GetConfig()
	assert.Equal(t, "user1", cfg.Username)
	assert.Equal(t, "pass1", cfg.Password)
	assert.Equal(t, "http://localhost:8080/api/", cfg.GetBaseURL())
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, "en", cfg.Language)
}

func TestLoadConfigTOML(t *testing.T) {
	clearCapiEnv(t)
	path := writeFile(t, "config.toml", `version = "1.0.0"
username = "user1"
password = "pass1"
timeout = "10s"
`)
	require.NoError(t, LoadConfig(path))
	cfg := GetConfig()
	assert.Equal(t, "user1", cfg.Username)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, capi.DefaultBaseURL, cfg.GetBaseURL())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearCapiEnv(t)
	path := writeFile(t, "config.yaml", "version: 1.1.0\nusername: user1\npassword: pass1\n")
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "env-pass")
	t.Setenv(EnvBaseURL, "https://staging.example.com")

	require.NoError(t, LoadConfig(path))
	cfg := GetConfig()
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
	assert.Equal(t, "https://staging.example.com/", cfg.GetBaseURL())
}

func TestLoadConfigFromEnvOnly(t *testing.T) {
	clearCapiEnv(t)
	missing := filepath.Join(t.TempDir(), "none.yaml")

	err := LoadConfig(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "env-pass")
	require.NoError(t, LoadConfig(missing))
	assert.Equal(t, "env-user", GetConfig().Username)
	assert.Equal(t, ConfigFormatVersion, GetConfig().Version)
}

func TestLoadConfigInvalid(t *testing.T) {
	clearCapiEnv(t)
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unsupported version", "version: 2.0.0\nusername: u\npassword: p\n", "not supported"},
		{"missing version", "username: u\npassword: p\n", "version failed on required"},
		{"password without username", "version: 1.1.0\npassword: p\n", "username failed on required_with"},
		{"bad url", "version: 1.1.0\nbase_url: not a url\n", "baseurl failed on http_url"},
		{"too many retries", "version: 1.1.0\nretries: 50\n", "retries failed on lte"},
		{"bad language", "version: 1.1.0\nlanguage: \"!!\"\n", "language failed"},
		{"not yaml", "version: [1.1.0\n", "unable to parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.content)
			err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	clearCapiEnv(t)
	cfg := &Config{
		Version:  ConfigFormatVersion,
		Username: "user1",
		Password: "pass1",
		BaseURL:  "http://localhost:8080/",
		Timeout:  3 * time.Second,
		Retries:  1,
	}
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, cfg.WriteConfig(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			require.NoError(t, LoadConfig(path))
			assert.Equal(t, cfg, GetConfig())
		})
	}
	assert.Error(t, cfg.WriteConfig(""))
}

func TestIsConfigVersionCompatible(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"1.0.0", true},
		{"1.1.0", true},
		{"1.2.0", false},
		{"0.9.0", false},
		{"2.0.0", false},
		{"garbage", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsConfigVersionCompatible(tt.version), tt.version)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	lang, err := normalizeLanguage("nl-BE")
	require.NoError(t, err)
	assert.Equal(t, "nl", lang)

	lang, err = normalizeLanguage("EN")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	_, err = normalizeLanguage("!!")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s, ok := summarize(map[string]any{"code": float64(22), "message": "Account updated"})
	require.True(t, ok)
	assert.Equal(t, "Account Updated", s)

	s, ok = summarize(map[string]any{"code": float64(13), "message": "Welcome aboard", "account": "acc_1"})
	require.True(t, ok)
	assert.Equal(t, "Account Created: Welcome aboard", s)

	_, ok = summarize(map[string]any{"id": 42})
	assert.False(t, ok)
	_, ok = summarize([]any{"a"})
	assert.False(t, ok)
}
