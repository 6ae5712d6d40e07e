package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API  APIConfig
	Auth AuthConfig
	UI   UIConfig
}

// APIConfig selects the backend and the transport mode.
type APIConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Mock        bool
	MockDelayMs int `mapstructure:"mock_delay_ms"`
}

// AuthConfig holds identity-provider connection parameters.
type AuthConfig struct {
	Domain            string
	ClientID          string `mapstructure:"client_id"`
	RedirectURL       string `mapstructure:"redirect_url"`
	LogoutRedirectURL string `mapstructure:"logout_redirect_url"`
	Scopes            []string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format"`
}

// Load reads configuration from file and env. Env var overrides use
// prefix RECEIPTED_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "https://apis.betafactory.info/docs/v1")
	v.SetDefault("api.mock", false)
	v.SetDefault("api.mock_delay_ms", 500)
	v.SetDefault("auth.domain", "")
	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.redirect_url", "http://localhost:8910/callback")
	v.SetDefault("auth.logout_redirect_url", "http://localhost:8910/logout")
	v.SetDefault("auth.scopes", []string{"openid", "email", "profile"})
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.date_format", "2006-01-02")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("RECEIPTED_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "receipted"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RECEIPTED")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
