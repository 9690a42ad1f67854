package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hakanisaksson/githook-seclog/internal/common"
	"github.com/hakanisaksson/githook-seclog/pkg/models"
)

// SystemConfigFile is the path consulted on servers where the hook
// runs without a home directory of its own.
const SystemConfigFile = "/etc/githook-seclog.yaml"

func GetConfigPath() string {
	if configPath := os.Getenv("GITHOOK_SECLOG_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".githook-seclog")
}

// GetConfigFile resolves the config file location: explicit env
// override first, then the system file, then the per-user file.
func GetConfigFile() string {
	if configFile := os.Getenv("GITHOOK_SECLOG_CONFIG"); configFile != "" {
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	if _, err := os.Stat(SystemConfigFile); err == nil {
		return SystemConfigFile
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

// Load reads the configuration file, falling back to defaults when it
// does not exist. Values present in the file override defaults
// field by field.
func Load() (models.Config, error) {
	return LoadFile(GetConfigFile())
}

// LoadFile loads configuration from an explicit path.
func LoadFile(configFile string) (models.Config, error) {
	cfg := models.Default()

	cleanedPath, err := common.CleanPath(configFile)
	if err != nil {
		return cfg, fmt.Errorf("invalid config file path: %w", err)
	}

	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the resolved config file.
func Save(cfg models.Config) error {
	configFile := GetConfigFile()
	if err := os.MkdirAll(filepath.Dir(configFile), common.DirPermissionNormal); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, common.FilePermissionConfig); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}
