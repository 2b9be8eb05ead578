package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Account AccountConfig `mapstructure:"account"`
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Filters FilterConfig  `mapstructure:"filters"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AccountConfig holds the account and device identity
type AccountConfig struct {
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	AndroidID string `mapstructure:"android_id"`
	AuthToken string `mapstructure:"auth_token"`
}

// APIConfig holds endpoint and device emulation settings
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	LoginURL          string        `mapstructure:"login_url"`
	Host              string        `mapstructure:"host"`
	Country           string        `mapstructure:"country"`
	Language          string        `mapstructure:"language"`
	SDKVersion        string        `mapstructure:"sdk_version"`
	UserAgent         string        `mapstructure:"user_agent"`
	DownloadUserAgent string        `mapstructure:"download_user_agent"`
	PublicKey         string        `mapstructure:"public_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ProxyURL          string        `mapstructure:"proxy_url"`
}

// CacheConfig controls response memoization
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	PrefetchTTL     time.Duration `mapstructure:"prefetch_ttl"`
	DisablePrefetch bool          `mapstructure:"disable_prefetch"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
