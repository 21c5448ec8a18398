// Package config manages configuration for the gcpsetup CLI.
// It uses Viper for unified configuration management from files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// Config is the unified configuration for the CLI. Flags override these
// values; the file and environment supply defaults.
type Config struct {
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	Project         string `mapstructure:"project" yaml:"project"`
	Region          string `mapstructure:"region" yaml:"region" validate:"required"`
	ServiceName     string `mapstructure:"service_name" yaml:"service_name" validate:"required"`
	Image           string `mapstructure:"image" yaml:"image"`
	SourceDir       string `mapstructure:"source_dir" yaml:"source_dir"`
	LedgerPath      string `mapstructure:"ledger_path" yaml:"ledger_path" validate:"required"`
	TargetURL       string `mapstructure:"target_url" yaml:"target_url" validate:"omitempty,url"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
}

var validate = validator.New()

// Load loads the configuration using Viper.
// Values come from ~/.gcpsetup/config.yaml when present, overridden by
// GCPSETUP_-prefixed environment variables. A missing config file is fine.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := loadConfigFile(v); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GCPSETUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the path of the config file that Load reads.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return constants.ConfigFilePath(home), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("region", constants.DefaultRegion)
	v.SetDefault("service_name", constants.DefaultServiceName)
	v.SetDefault("ledger_path", constants.LedgerFileName)
	v.SetDefault("target_url", constants.DemoTargetURL)
	v.SetDefault("log_level", "info")
}

func loadConfigFile(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error getting home directory: %w", err)
	}

	v.SetConfigName(strings.TrimSuffix(constants.ConfigFileName, filepath.Ext(constants.ConfigFileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(constants.ConfigDirPath(home))

	return v.ReadInConfig()
}

// bindEnvVars binds every config key explicitly so AutomaticEnv picks up
// variables even before the key appears in a file or default.
func bindEnvVars(v *viper.Viper) {
	keys := []string{
		"credentials_file",
		"project",
		"region",
		"service_name",
		"image",
		"source_dir",
		"ledger_path",
		"target_url",
		"log_level",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}
