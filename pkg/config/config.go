package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/quilr/guardrails-go/pkg/infra/quilr"
)

type Config struct {
	Quilr   QuilrConfig   `mapstructure:"quilr"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type QuilrConfig struct {
	Guardrails GuardrailsConfig `mapstructure:"guardrails"`
}

// GuardrailsConfig is read from config.yaml when present. Every key can be
// overridden through the matching QUILR_GUARDRAILS_* environment variable,
// which is the usual deployment mode.
type GuardrailsConfig struct {
	Key                string `mapstructure:"key"`
	BaseURL            string `mapstructure:"base_url"`
	AllowedModels      string `mapstructure:"allowed_models"`
	AllowedCredentials string `mapstructure:"allowed_credentials"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
}

type MetricsConfig struct {
	EnablePluginTraces       bool `mapstructure:"enable_plugin_traces"`
	EnableLatency            bool `mapstructure:"enable_latency"`
	EnableCategoryDetections bool `mapstructure:"enable_category_detections"`
}

var globalConfig Config

func Load(configPath string) error {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No file is fine, environment variables carry the config.
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// Defaults double as the key registry: viper only surfaces env-backed keys
// to Unmarshal when they are known through a default or a config file.
func setDefaults() {
	viper.SetDefault("quilr.guardrails.key", "")
	viper.SetDefault("quilr.guardrails.base_url", quilr.DefaultBaseURL)
	viper.SetDefault("quilr.guardrails.allowed_models", "")
	viper.SetDefault("quilr.guardrails.allowed_credentials", "")
	viper.SetDefault("quilr.guardrails.timeout_seconds", 10)
	viper.SetDefault("metrics.enable_plugin_traces", true)
	viper.SetDefault("metrics.enable_latency", true)
	viper.SetDefault("metrics.enable_category_detections", false)
}

func GetConfig() *Config {
	return &globalConfig
}

// ParseList splits a comma separated value into trimmed, non-empty entries.
func ParseList(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
