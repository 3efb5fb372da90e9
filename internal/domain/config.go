package domain

import (
	"path/filepath"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Download     DownloadConfig     `mapstructure:"download"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendConfig contains extraction backend configuration
type BackendConfig struct {
	YTDLPBinary       string        `mapstructure:"ytdlp_binary"`
	FFmpegBinary      string        `mapstructure:"ffmpeg_binary"`
	CookieFile        string        `mapstructure:"cookie_file"`
	MergeOutputFormat string        `mapstructure:"merge_output_format"`
	AudioFormat       string        `mapstructure:"audio_format"`
	Timeout           time.Duration `mapstructure:"timeout"` // 0 disables the per-operation deadline
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	FileTemplate  string `mapstructure:"file_template"`
	StrictFormats bool   `mapstructure:"strict_formats"`
}

// OutputTemplate returns the default output path template
func (c DownloadConfig) OutputTemplate() string {
	return filepath.Join(c.BaseDir, c.FileTemplate)
}

// LogsDir returns the directory for process logs
func (c DownloadConfig) LogsDir() string {
	return filepath.Join(c.BaseDir, "logs")
}

// HistoryConfig contains operation history configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Backend: BackendConfig{
			YTDLPBinary:       "yt-dlp",
			FFmpegBinary:      "ffmpeg",
			MergeOutputFormat: "mp4",
			AudioFormat:       "mp3",
			Timeout:           0,
		},
		Download: DownloadConfig{
			BaseDir:       "$HOME/Download",
			FileTemplate:  "%(title)s.%(ext)s",
			StrictFormats: true,
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.freedl/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
