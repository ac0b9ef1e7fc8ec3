package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/comigor/jargone-go/internal/logger"
)

// Provider names accepted in provider.name.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// Config holds the application configuration
type Config struct {
	Service  ServiceConfig
	Provider ProviderConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Log      LogConfig
}

// ServiceConfig points at the local explanation API.
type ServiceConfig struct {
	URL string `mapstructure:"url"`
}

// ProviderConfig selects the backend and describes its verification site.
type ProviderConfig struct {
	Name         string        `mapstructure:"name"`
	SiteURL      string        `mapstructure:"site_url"`
	BlockedDelay time.Duration `mapstructure:"blocked_delay"`
}

// LLMConfig holds the LLM configuration used by the openai provider
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// StorageConfig holds the key-value store location
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.url", "http://localhost:8000/explain")
	v.SetDefault("provider.name", ProviderLocal)
	v.SetDefault("provider.site_url", "https://chat.openai.com/chat")
	v.SetDefault("provider.blocked_delay", 3*time.Second)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("storage.path", filepath.Join(homeDir(), ".jargone", "jargone.db"))
	v.SetDefault("log.level", "warn")
}

// Load reads the configuration from path, or from CONFIG_PATH, or from
// config.yaml in the working directory or ~/.jargone. A missing file is not
// an error; defaults and JARGONE_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(homeDir(), ".jargone"))
	}

	v.SetEnvPrefix("JARGONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderLocal:
		if c.Service.URL == "" {
			return fmt.Errorf("service.url cannot be empty")
		}
	case ProviderOpenAI:
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model cannot be empty")
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider.Name, ProviderLocal, ProviderOpenAI)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
