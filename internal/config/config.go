package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gatherly-app/gatherly/internal/domain"
)

/*
Config precedence, highest to lowest:

1. Runtime overrides (CLI flags)
2. Environment variables (GATHERLY_* plus the explicit mappings below)
3. Local project config (.gatherly.yaml)
4. Global user config ($XDG_CONFIG_HOME/gatherly/gatherly.yaml)
5. Defaults

A .env file in the working directory is loaded into the environment before
viper reads it, so local development can keep the API token out of shell
profiles.
*/

// envVarConfig defines an environment variable mapping
type envVarConfig struct {
	key      string // Key in the config
	envVar   string // Environment variable name
	isSecret bool   // Whether to redact in logs
}

var envVars = []envVarConfig{
	{key: "api.token", envVar: "GATHERLY_API_TOKEN", isSecret: true},
	{key: "api.baseUrl", envVar: "GATHERLY_API_URL"},
	{key: "userId", envVar: "GATHERLY_USER_ID"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.baseUrl", "https://api.gatherly.app")
	v.SetDefault("api.timeoutSeconds", 10)
	v.SetDefault("log.logLevel", "INFO")
	v.SetDefault("dbPath", defaultDBPath())
	v.SetDefault("role", "attendee")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gatherly.db"
	}
	return filepath.Join(home, ".local", "share", "gatherly", "gatherly.db")
}

// configFilePaths returns candidate config files, lowest precedence first.
func configFilePaths() []string {
	var paths []string

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		if home, err := os.UserHomeDir(); err == nil {
			xdgConfig = filepath.Join(home, ".config")
		}
	}
	if xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, "gatherly", "gatherly.yaml"))
	}
	paths = append(paths, ".gatherly.yaml")
	return paths
}

// New loads the configuration and applies any runtime overrides.
func New(overrides *RuntimeOverrides) (*ConfigSchema, error) {
	// Best effort; a missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GATHERLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, env := range envVars {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env.envVar, err)
		}
	}

	for _, path := range configFilePaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg ConfigSchema
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyOverrides(&cfg, overrides)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Role != "" && !domain.ValidRole(cfg.Role) {
		return nil, fmt.Errorf("invalid role %q", cfg.Role)
	}

	return &cfg, nil
}
