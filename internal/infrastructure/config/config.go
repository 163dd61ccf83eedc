package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the CLI.
type Config struct {
	Cache  CacheConfig  `mapstructure:"cache" json:"cache" yaml:"cache"`
	Hub    HubConfig    `mapstructure:"hub" json:"hub" yaml:"hub"`
	Patch  PatchConfig  `mapstructure:"patch" json:"patch" yaml:"patch"`
	Server ServerConfig `mapstructure:"server" json:"server" yaml:"server"`
	Logger LoggerConfig `mapstructure:"logger" json:"logger" yaml:"logger"`
}

// CacheConfig holds hub cache settings. An empty dir means the standard hub
// cache location resolved at runtime.
type CacheConfig struct {
	Dir string `mapstructure:"dir" json:"dir" yaml:"dir"`
}

// HubConfig holds hub API settings.
type HubConfig struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	Token   string        `mapstructure:"token" json:"token,omitempty" yaml:"token,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// MarshalJSON renders the timeout as a duration string so the saved config
// file stays hand-editable.
func (h HubConfig) MarshalJSON() ([]byte, error) {
	type alias HubConfig
	return json.Marshal(struct {
		alias
		Timeout string `json:"timeout"`
	}{alias: alias(h), Timeout: h.Timeout.String()})
}

// MarshalYAML renders the timeout as a duration string.
func (h HubConfig) MarshalYAML() (interface{}, error) {
	out := map[string]interface{}{
		"base_url": h.BaseURL,
		"timeout":  h.Timeout.String(),
	}
	if h.Token != "" {
		out["token"] = h.Token
	}
	return out, nil
}

// PatchConfig holds the default patch applied by the patch command.
type PatchConfig struct {
	File  string `mapstructure:"file" json:"file" yaml:"file"`
	Field string `mapstructure:"field" json:"field" yaml:"field"`
	Value string `mapstructure:"value" json:"value" yaml:"value"`
}

// ServerConfig holds model server integration settings.
type ServerConfig struct {
	ConfigDir string `mapstructure:"config_dir" json:"config_dir" yaml:"config_dir"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// DefaultPath returns the location of the persistent config file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "hubfix", "config.json"), nil
}

// Load builds the configuration from defaults, the config file at path (the
// default location when empty), and HUBFIX_* environment variables, in
// ascending precedence. A missing config file is not an error.
func Load(path string) (*Config, error) {
	// A local .env is a convenience for development; ignore if absent.
	_ = godotenv.Load()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("HUBFIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg as indented JSON to path, creating parent directories as
// needed. The file is user-only since it may carry a hub token.
func Save(cfg *Config, path string) error {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Cache defaults
	v.SetDefault("cache.dir", "")

	// Hub defaults
	v.SetDefault("hub.base_url", "https://huggingface.co")
	v.SetDefault("hub.token", "")
	v.SetDefault("hub.timeout", "10s")

	// Patch defaults
	v.SetDefault("patch.file", "tokenizer_config.json")
	v.SetDefault("patch.field", "legacy")
	v.SetDefault("patch.value", "true")

	// Server defaults
	v.SetDefault("server.config_dir", "assets/config")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
}

func bindEnvVars(v *viper.Viper) {
	// Cache
	_ = v.BindEnv("cache.dir", "HUBFIX_CACHE_DIR")

	// Hub; HF_TOKEN is the conventional hub token variable.
	_ = v.BindEnv("hub.base_url", "HUBFIX_HUB_BASE_URL")
	_ = v.BindEnv("hub.token", "HUBFIX_HUB_TOKEN", "HF_TOKEN")
	_ = v.BindEnv("hub.timeout", "HUBFIX_HUB_TIMEOUT")

	// Patch
	_ = v.BindEnv("patch.file", "HUBFIX_PATCH_FILE")
	_ = v.BindEnv("patch.field", "HUBFIX_PATCH_FIELD")
	_ = v.BindEnv("patch.value", "HUBFIX_PATCH_VALUE")

	// Server
	_ = v.BindEnv("server.config_dir", "HUBFIX_SERVER_CONFIG_DIR")

	// Logger
	_ = v.BindEnv("logger.level", "HUBFIX_LOG_LEVEL")
	_ = v.BindEnv("logger.format", "HUBFIX_LOG_FORMAT")
}

func validateConfig(cfg *Config) error {
	if cfg.Patch.Field == "" {
		return fmt.Errorf("patch field is required")
	}

	if !json.Valid([]byte(cfg.Patch.Value)) {
		return fmt.Errorf("patch value %q is not valid JSON", cfg.Patch.Value)
	}

	if cfg.Hub.Timeout <= 0 {
		return fmt.Errorf("hub timeout must be positive")
	}

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Logger.Level)
	}

	switch cfg.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Logger.Format)
	}

	return nil
}
