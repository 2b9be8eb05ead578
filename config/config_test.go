package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
account:
  username: user@example.com
  password: secret
  android_id: 3f1c2a9b8e7d6c5b
api:
  country: de
  timeout: 10s
  proxy_url: socks5://127.0.0.1:1080
cache:
  prefetch_ttl: 1m
filters:
  no-camera: not hasPermission("CAMERA")
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.Account.Username)
	assert.Equal(t, "de", cfg.API.Country)
	assert.Equal(t, "en_US", cfg.API.Language)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.PrefetchTTL)
	assert.Equal(t, `not hasPermission("CAMERA")`, cfg.Filters["no-camera"])
	assert.Equal(t, "json", cfg.Logging.Format)

	client := cfg.ClientConfig()
	assert.Equal(t, "3f1c2a9b8e7d6c5b", client.DeviceID)
	assert.Equal(t, "secret", client.Password)
	assert.Equal(t, "socks5://127.0.0.1:1080", client.ProxyURL)
	assert.Equal(t, time.Minute, client.PrefetchTTL)
	assert.True(t, client.UseCache)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
account:
  username: file@example.com
  password: file-secret
  android_id: fromfile
`)
	t.Setenv("GOOGLE_LOGIN", "env@example.com")
	t.Setenv("ANDROID_ID", "fromenv")
	t.Setenv("GPLAY_API_COUNTRY", "fr")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Account.Username)
	assert.Equal(t, "file-secret", cfg.Account.Password)
	assert.Equal(t, "fromenv", cfg.Account.AndroidID)
	assert.Equal(t, "fr", cfg.API.Country)
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANDROID_ID", "3f1c2a9b8e7d6c5b")
	t.Setenv("GOOGLE_AUTH_TOKEN", "token")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.Account.AuthToken)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Account: AccountConfig{AndroidID: "abc", AuthToken: "tok"},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid with token",
			mutate: func(*Config) {},
		},
		{
			name: "valid with credentials",
			mutate: func(c *Config) {
				c.Account.AuthToken = ""
				c.Account.Username = "user"
				c.Account.Password = "pass"
			},
		},
		{
			name:    "missing android id",
			mutate:  func(c *Config) { c.Account.AndroidID = "" },
			wantErr: "android_id",
		},
		{
			name: "password without username",
			mutate: func(c *Config) {
				c.Account.AuthToken = ""
				c.Account.Password = "pass"
			},
			wantErr: "auth_token",
		},
		{
			name:    "invalid level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "invalid logging level",
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Cache.PrefetchTTL = -time.Second },
			wantErr: "prefetch_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
