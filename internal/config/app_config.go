// Package config loads digest configuration from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tyemirov/digest/internal/utils"
)

const globalConfigFileName = "config.yaml"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults for the digest command. Unset pointer fields
// defer to command-line defaults.
type ApplicationConfiguration struct {
	Inputs            []string           `mapstructure:"inputs"`
	Output            string             `mapstructure:"output"`
	IgnoreFile        string             `mapstructure:"ignore_file"`
	MinifyFile        string             `mapstructure:"minify_file"`
	DefaultIgnores    *bool              `mapstructure:"default_ignores"`
	WhitespaceRemoval *bool              `mapstructure:"whitespace_removal"`
	Exclude           []string           `mapstructure:"exclude"`
	ShowOutputFiles   *bool              `mapstructure:"show_output_files"`
	SortBySize        *bool              `mapstructure:"sort_by_size"`
	Tokens            TokenConfiguration `mapstructure:"tokens"`
	Clipboard         *bool              `mapstructure:"clipboard"`
	Watch             WatchConfiguration `mapstructure:"watch"`
}

// TokenConfiguration controls token estimation defaults.
type TokenConfiguration struct {
	Model string `mapstructure:"model"`
}

// WatchConfiguration controls watch mode defaults.
type WatchConfiguration struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if globalPath, err := GlobalConfigurationPath(); err == nil {
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Exclude = utils.DeduplicatePatterns(merged.Exclude)

	return merged, nil
}

// GlobalConfigurationPath returns ~/.digest/config.yaml.
func GlobalConfigurationPath() (string, error) {
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if homeDirectory == "" {
		return "", fmt.Errorf("resolve home directory: empty path")
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, globalConfigFileName), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if len(override.Inputs) > 0 {
		result.Inputs = append([]string{}, override.Inputs...)
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.IgnoreFile != "" {
		result.IgnoreFile = override.IgnoreFile
	}
	if override.MinifyFile != "" {
		result.MinifyFile = override.MinifyFile
	}
	if override.DefaultIgnores != nil {
		result.DefaultIgnores = cloneBool(override.DefaultIgnores)
	}
	if override.WhitespaceRemoval != nil {
		result.WhitespaceRemoval = cloneBool(override.WhitespaceRemoval)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.ShowOutputFiles != nil {
		result.ShowOutputFiles = cloneBool(override.ShowOutputFiles)
	}
	if override.SortBySize != nil {
		result.SortBySize = cloneBool(override.SortBySize)
	}
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.Watch.Debounce > 0 {
		result.Watch.Debounce = override.Watch.Debounce
	}
	return result
}

// BoolOrDefault dereferences value, falling back to defaultValue when unset.
func BoolOrDefault(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
