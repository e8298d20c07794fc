package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Provider names accepted by classifier.provider.
const (
	ProviderHTTP = "http"
	ProviderLLM  = "llm"
)

// DefaultEndpoint is the hosted Darija sentiment model.
const DefaultEndpoint = "https://serverofdarijasentimentanalysis-production.up.railway.app/predict"

// Config holds the application configuration
type Config struct {
	Log        LogConfig
	Server     ServerConfig
	Classifier ClassifierConfig
	LLM        LLMConfig
	Session    SessionConfig
	Archive    ArchiveConfig
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// ClassifierConfig is the service configuration injected into the prediction client.
// A zero Timeout means the call waits on the transport alone.
type ClassifierConfig struct {
	Provider     string        `mapstructure:"provider"`
	Endpoint     string        `mapstructure:"endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
	StrictLabels bool          `mapstructure:"strict_labels"`
}

// LLMConfig holds the OpenAI-compatible backend configuration
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// SessionConfig holds per-session limits. Web sessions unused for IdleTimeout
// are dropped; 0 keeps them for the life of the process.
type SessionConfig struct {
	HistoryLimit int           `mapstructure:"history_limit"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ArchiveConfig holds the prediction archive configuration. An empty Path disables it.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("classifier.provider", ProviderHTTP)
	v.SetDefault("classifier.endpoint", DefaultEndpoint)
	v.SetDefault("classifier.timeout", time.Duration(0))
	v.SetDefault("classifier.strict_labels", true)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("session.history_limit", 10)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("archive.path", "")
}

// Load loads the configuration from $CONFIG_PATH, or config.yaml in the working
// directory when present. SENTIMENT_* environment variables override file values.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SENTIMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Classifier.Provider {
	case ProviderHTTP:
		if c.Classifier.Endpoint == "" {
			return errors.New("classifier.endpoint is required for the http provider")
		}
	case ProviderLLM:
		if c.LLM.Model == "" {
			return errors.New("llm.model is required for the llm provider")
		}
	default:
		return fmt.Errorf("unsupported classifier.provider %q (want %q or %q)", c.Classifier.Provider, ProviderHTTP, ProviderLLM)
	}
	if c.Classifier.Timeout < 0 {
		return errors.New("classifier.timeout must not be negative")
	}
	if c.Session.IdleTimeout < 0 {
		return errors.New("session.idle_timeout must not be negative")
	}
	if c.Session.HistoryLimit <= 0 {
		return fmt.Errorf("session.history_limit must be positive, got %d", c.Session.HistoryLimit)
	}
	return nil
}

// Addr is the listen address of the web front end.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}
