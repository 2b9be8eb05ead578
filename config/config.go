package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/gplay/playstore"
)

// envBindings maps config keys to the environment variables that have
// always been honoured for them
var envBindings = map[string]string{
	"account.username":   "GOOGLE_LOGIN",
	"account.password":   "GOOGLE_PASSWORD",
	"account.android_id": "ANDROID_ID",
	"account.auth_token": "GOOGLE_AUTH_TOKEN",
}

// Load loads the configuration. An explicit configPath must exist;
// otherwise the standard locations are searched and a missing file is
// fine as long as the environment supplies the account.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gplay"))
		}
		v.AddConfigPath("/etc/gplay/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// everything else is reachable as GPLAY_<SECTION>_<KEY>
	v.SetEnvPrefix("gplay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", playstore.DefaultBaseURL)
	v.SetDefault("api.login_url", playstore.DefaultLoginURL)
	v.SetDefault("api.host", playstore.DefaultHost)
	v.SetDefault("api.country", playstore.DefaultCountry)
	v.SetDefault("api.language", playstore.DefaultLanguage)
	v.SetDefault("api.sdk_version", playstore.DefaultSDKVersion)
	v.SetDefault("api.user_agent", playstore.DefaultUserAgent)
	v.SetDefault("api.download_user_agent", playstore.DefaultDownloadUserAgent)
	v.SetDefault("api.timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.prefetch_ttl", playstore.DefaultPrefetchTTL.String())
	v.SetDefault("cache.disable_prefetch", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Account.AndroidID == "" {
		return fmt.Errorf("account.android_id is required (or set ANDROID_ID)")
	}

	if cfg.Account.AuthToken == "" && (cfg.Account.Username == "" || cfg.Account.Password == "") {
		return fmt.Errorf("account.username and account.password, or account.auth_token, must be set")
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if cfg.Cache.PrefetchTTL < 0 {
		return fmt.Errorf("cache.prefetch_ttl must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// ClientConfig maps the file configuration onto the client's
// construction struct
func (c *Config) ClientConfig() playstore.Config {
	return playstore.Config{
		Username:          c.Account.Username,
		Password:          c.Account.Password,
		DeviceID:          c.Account.AndroidID,
		AuthToken:         c.Account.AuthToken,
		PublicKey:         c.API.PublicKey,
		BaseURL:           c.API.BaseURL,
		LoginURL:          c.API.LoginURL,
		Host:              c.API.Host,
		Country:           c.API.Country,
		Language:          c.API.Language,
		SDKVersion:        c.API.SDKVersion,
		UserAgent:         c.API.UserAgent,
		DownloadUserAgent: c.API.DownloadUserAgent,
		Timeout:           c.API.Timeout,
		ProxyURL:          c.API.ProxyURL,
		UseCache:          c.Cache.Enabled,
		PrefetchTTL:       c.Cache.PrefetchTTL,
		DisablePrefetch:   c.Cache.DisablePrefetch,
	}
}
