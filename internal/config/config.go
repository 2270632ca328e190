// Package config loads and persists sungit settings through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the settings the workflow and the LLM client read.
type Config struct {
	Role           string   `mapstructure:"role"`
	Model          string   `mapstructure:"model"`
	APIKey         string   `mapstructure:"api_key"`
	APIBase        string   `mapstructure:"api_base"`
	PromptTemplate string   `mapstructure:"prompt_template"`
	Triggers       []string `mapstructure:"triggers"`
	GitTimeout     int      `mapstructure:"git_timeout"`
	MaxDiffLines   int      `mapstructure:"max_diff_lines"`
}

const (
	DefaultRole           = "Developer"
	DefaultModel          = "gpt-4o-mini"
	DefaultConfigName     = "config"
	DefaultConfigDir      = "sungit"
	LegacyConfigName      = ".sungit"
	DefaultPromptTemplate = "default"
	EnvPrefix             = "SUNGIT"

	// DefaultGitTimeout bounds each git subprocess call, in seconds.
	DefaultGitTimeout = 60
	// DefaultMaxDiffLines caps how much staged diff reaches the prompt.
	DefaultMaxDiffLines = 150
)

var suggestedModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4.1-mini",
	"gpt-4.1",
}

var suggestedRoles = []string{
	"Developer",
	"Frontend Developer",
	"Backend Developer",
	"DevOps Engineer",
	"Full Stack Developer",
}

// InitConfig wires viper to the config file, environment, and defaults.
// A missing config file is not an error; unreadable or invalid files are.
func InitConfig(cfgFile string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home directory: %w", err)
	}

	viper.AddConfigPath(filepath.Join(home, ".config", DefaultConfigDir))
	viper.SetConfigName(DefaultConfigName)
	viper.SetConfigType("yaml")

	err = viper.ReadInConfig()
	if err == nil {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Fall back to the legacy dotfile location.
	viper.SetConfigName(LegacyConfigName)
	viper.AddConfigPath(home)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("role", DefaultRole)
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("api_key", "")
	viper.SetDefault("api_base", "")
	viper.SetDefault("prompt_template", DefaultPromptTemplate)
	viper.SetDefault("triggers", []string{})
	viper.SetDefault("git_timeout", DefaultGitTimeout)
	viper.SetDefault("max_diff_lines", DefaultMaxDiffLines)
}

// GetConfig unmarshals the current viper state.
func GetConfig() (*Config, error) {
	setDefaults()
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SetConfigValue records a value in the live viper state without saving it.
func SetConfigValue(key string, value any) {
	viper.Set(key, value)
}

// SaveConfig writes the current state back to the config file, creating the
// default file when none was loaded.
func SaveConfig() error {
	if viper.ConfigFileUsed() != "" {
		return viper.WriteConfig()
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return viper.WriteConfigAs(path)
}

// DefaultConfigPath returns the path SaveConfig writes to when no config file
// has been loaded yet.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", DefaultConfigDir, DefaultConfigName+".yaml"), nil
}

// IsValidRole reports whether role is usable (any non-empty string).
func IsValidRole(role string) bool {
	return role != ""
}

// IsValidModel reports whether model is usable (any non-empty string).
func IsValidModel(model string) bool {
	return model != ""
}

func GetSuggestedRoles() []string {
	return suggestedRoles
}

func GetSuggestedModels() []string {
	return suggestedModels
}
