package infrastructure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FFmpegConverter turns downloaded media into an audio-only file
type FFmpegConverter struct {
	binary      string
	audioFormat string
	logsDir     string
	logger      *zap.Logger
}

// NewFFmpegConverter creates a converter. audioFormat is the target
// extension, mp3 when empty.
func NewFFmpegConverter(binary, audioFormat, logsDir string, logger *zap.Logger) *FFmpegConverter {
	if binary == "" {
		binary = "ffmpeg"
	}
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	return &FFmpegConverter{
		binary:      binary,
		audioFormat: audioFormat,
		logsDir:     logsDir,
		logger:      logger,
	}
}

// AudioPath returns the converted file path for source
func (c *FFmpegConverter) AudioPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + "." + c.audioFormat
}

func (c *FFmpegConverter) args(source, target string) []string {
	return []string{"-y", "-i", source, "-vn", target}
}

// ConvertToAudio writes the audio track of source to AudioPath(source) and
// removes source on success.
func (c *FFmpegConverter) ConvertToAudio(ctx context.Context, source string) (string, error) {
	target := c.AudioPath(source)
	if target == source {
		return source, nil
	}

	plog, err := openProcessLog(c.logsDir)
	if err != nil {
		return "", err
	}
	defer plog.Close()

	args := c.args(source, target)
	plog.Header("Convert: "+filepath.Base(source), ShellEscapeCommand(c.binary, args...))

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = plog.Writer()
	cmd.Stderr = plog.Writer()

	if err := cmd.Run(); err != nil {
		plog.Footer(false, fmt.Sprintf("ffmpeg failed: %v", err))
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	if err := os.Remove(source); err != nil {
		c.logger.Warn("Failed to remove converted source",
			zap.String("path", source),
			zap.Error(err))
	}

	plog.Footer(true, "Converted: "+target)
	c.logger.Debug("Converted to audio",
		zap.String("source", source),
		zap.String("target", target))
	return target, nil
}
