package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".branchy"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for branchy process settings.
const envPrefix = "BRANCHY"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Default values applied before the config file and environment are read.
const (
	DefaultTransport       = "stdio"
	DefaultLogLevel        = "info"
	DefaultSampleRatio     = 1.0
	DefaultShutdownTimeout = 5
	DefaultParserPoolSize  = 4
	DefaultMaxOpenFiles    = 256
	DefaultConfigDirectory = ""
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.transport", DefaultTransport)
	viperCfg.SetDefault("server.metrics_addr", "")

	viperCfg.SetDefault("observability.log_level", DefaultLogLevel)
	viperCfg.SetDefault("observability.log_json", false)
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("observability.shutdown_timeout_sec", DefaultShutdownTimeout)
	viperCfg.SetDefault("observability.otlp_endpoint", "")

	viperCfg.SetDefault("editor.parser_pool_size", DefaultParserPoolSize)
	viperCfg.SetDefault("editor.max_open_files", DefaultMaxOpenFiles)
	viperCfg.SetDefault("editor.config_directory", DefaultConfigDirectory)
}
