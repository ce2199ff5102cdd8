package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to a documented env var.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Local store
	DataPath string `mapstructure:"DATA_PATH"` // per-device sqlite file

	// Backend
	BackendURL  string `mapstructure:"BACKEND_URL"`
	AccessToken string `mapstructure:"ACCESS_TOKEN"`
	// BusinessID overrides the business_id claim of the access token when
	// the backend issues tokens without one.
	BusinessID string `mapstructure:"BUSINESS_ID"`

	// Sync timing
	ProbeIntervalSeconds int `mapstructure:"PROBE_INTERVAL_SECONDS"`
	SettleDelayMillis    int `mapstructure:"SETTLE_DELAY_MS"`
	StartupSyncMillis    int `mapstructure:"STARTUP_SYNC_DELAY_MS"`
	SubmitDelayMillis    int `mapstructure:"SUBMIT_DELAY_MS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 7070)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATA_PATH", "bloom-agent.db")
	viper.SetDefault("BACKEND_URL", "http://localhost:8000")
	viper.SetDefault("PROBE_INTERVAL_SECONDS", 15)
	viper.SetDefault("SETTLE_DELAY_MS", 1000)
	viper.SetDefault("STARTUP_SYNC_DELAY_MS", 2000)
	viper.SetDefault("SUBMIT_DELAY_MS", 300)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
