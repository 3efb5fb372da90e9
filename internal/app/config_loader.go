package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yourusername/freedl-go/internal/domain"
)

// EnvPrefix is the prefix of environment overrides, e.g. FREEDL_BACKEND_TIMEOUT
const EnvPrefix = "FREEDL"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// A .env file is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.freedl")
		v.AddConfigPath("/etc/freedl")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so AutomaticEnv can override values
// that are absent from the config file.
func setDefaults(v *viper.Viper, c *domain.Config) {
	applyKeys(v.SetDefault, c)
}

func applyKeys(set func(key string, value interface{}), c *domain.Config) {
	set("server.host", c.Server.Host)
	set("server.port", c.Server.Port)
	set("backend.ytdlp_binary", c.Backend.YTDLPBinary)
	set("backend.ffmpeg_binary", c.Backend.FFmpegBinary)
	set("backend.cookie_file", c.Backend.CookieFile)
	set("backend.merge_output_format", c.Backend.MergeOutputFormat)
	set("backend.audio_format", c.Backend.AudioFormat)
	set("backend.timeout", c.Backend.Timeout.String())
	set("download.base_dir", c.Download.BaseDir)
	set("download.file_template", c.Download.FileTemplate)
	set("download.strict_formats", c.Download.StrictFormats)
	set("history.enabled", c.History.Enabled)
	set("history.database_path", c.History.DatabasePath)
	set("notification.enabled", c.Notification.Enabled)
	set("notification.method", c.Notification.Method)
	set("logging.level", c.Logging.Level)
	set("logging.format", c.Logging.Format)
	set("logging.output_path", c.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.BaseDir = expandPath(config.Download.BaseDir)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Backend.CookieFile = expandPath(config.Backend.CookieFile)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths. yt-dlp
// template tokens like %(title)s are left alone.
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Backend.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Backend.Timeout < 0 {
		return fmt.Errorf("backend timeout cannot be negative")
	}

	if config.Download.BaseDir == "" {
		return fmt.Errorf("download base directory not configured")
	}

	if config.Download.FileTemplate == "" {
		return fmt.Errorf("download file template not configured")
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	applyKeys(v.Set, config)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
