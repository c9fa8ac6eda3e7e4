package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	PublicURL string `mapstructure:"public_url"` // client base URL used in join QR codes
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// GameConfig configures the session registry and player lifecycle.
type GameConfig struct {
	GracePeriod time.Duration   `mapstructure:"grace_period"`
	Sessions    []SessionConfig `mapstructure:"sessions"`
}

// SessionConfig defines one fixed session.
type SessionConfig struct {
	Code string `mapstructure:"code"`
	Type string `mapstructure:"type"`
}

// CatalogConfig configures the optional token-template catalog.
type CatalogConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DatabaseURL string `mapstructure:"database_url"`
}

// Load reads configuration from a yaml file with environment overrides
// (TABLETOP_ prefix, e.g. TABLETOP_SERVER_ADDRESS). A missing file
// falls back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("TABLETOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("game.grace_period", 3*time.Minute)
	v.SetDefault("catalog.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		// No config file: run on defaults and env.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Catalog.Enabled && cfg.Catalog.DatabaseURL == "" {
		return nil, fmt.Errorf("catalog enabled but catalog.database_url is empty")
	}
	return &cfg, nil
}
