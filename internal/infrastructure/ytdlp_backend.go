package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yourusername/freedl-go/internal/domain"
	"go.uber.org/zap"
)

const codecNone = "none"

var _ domain.InfoBackend = (*YTDLPBackend)(nil)

// YTDLPBackend implements domain.Backend by running the yt-dlp binary
type YTDLPBackend struct {
	config    *domain.BackendConfig
	logsDir   string
	converter *FFmpegConverter
	logger    *zap.Logger
}

// NewYTDLPBackend creates a yt-dlp backend writing subprocess output under logsDir
func NewYTDLPBackend(config *domain.BackendConfig, logsDir string, logger *zap.Logger) *YTDLPBackend {
	return &YTDLPBackend{
		config:    config,
		logsDir:   logsDir,
		converter: NewFFmpegConverter(config.FFmpegBinary, config.AudioFormat, logsDir, logger),
		logger:    logger,
	}
}

// ytdlpInfo is the subset of `yt-dlp -J` output the backend reads
type ytdlpInfo struct {
	Title          string        `json:"title"`
	Duration       float64       `json:"duration"`
	DurationString string        `json:"duration_string"`
	Uploader       string        `json:"uploader"`
	ViewCount      int64         `json:"view_count"`
	Thumbnail      string        `json:"thumbnail"`
	WebpageURL     string        `json:"webpage_url"`
	Formats        []ytdlpFormat `json:"formats"`
}

func (i ytdlpInfo) videoInfo() *domain.VideoInfo {
	return &domain.VideoInfo{
		Title:          i.Title,
		Duration:       i.Duration,
		DurationString: i.DurationString,
		Uploader:       i.Uploader,
		ViewCount:      i.ViewCount,
		Thumbnail:      i.Thumbnail,
		WebpageURL:     i.WebpageURL,
	}
}

type ytdlpFormat struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	Height   *int   `json:"height"`
	VCodec   string `json:"vcodec"`
	ACodec   string `json:"acodec"`
}

// hasMedia reports whether the entry carries audio or video. A missing
// codec counts as none.
func (f ytdlpFormat) hasMedia() bool {
	return codecPresent(f.VCodec) || codecPresent(f.ACodec)
}

func codecPresent(codec string) bool {
	return codec != "" && codec != codecNone
}

// label renders "<id> - <height>p - <ext>"
func (f ytdlpFormat) label() string {
	height := "N/A"
	if f.Height != nil {
		height = strconv.Itoa(*f.Height)
	}
	ext := f.Ext
	if ext == "" {
		ext = "unknown"
	}
	return fmt.Sprintf("%s - %sp - %s", f.FormatID, height, ext)
}

// parseInfo converts `yt-dlp -J` output into the video metadata and the
// backend-ordered tuples of every entry that has audio or video
func parseInfo(data []byte) (*domain.VideoInfo, []domain.RawFormat, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	formats := make([]domain.RawFormat, 0, len(info.Formats))
	for _, f := range info.Formats {
		if !f.hasMedia() {
			continue
		}
		formats = append(formats, domain.NewRawFormat(f.FormatID, f.label()))
	}
	return info.videoInfo(), formats, nil
}

func (b *YTDLPBackend) listFormatsArgs(url string) []string {
	args := []string{"-J", "--no-playlist"}
	args = b.appendCookies(args)
	return append(args, url)
}

func (b *YTDLPBackend) downloadArgs(url, outputTemplate, formatID string, audioOnly bool) []string {
	selector := formatID + "+bestaudio/best"
	if audioOnly {
		selector = formatID
	}

	args := []string{"-f", selector}
	if b.config.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", b.config.MergeOutputFormat)
	}
	args = append(args,
		"--no-playlist",
		"-o", outputTemplate,
		"--print", "after_move:filepath",
		"--no-simulate",
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
	)
	args = b.appendCookies(args)
	return append(args, url)
}

func (b *YTDLPBackend) appendCookies(args []string) []string {
	if b.config.CookieFile != "" && fileExists(b.config.CookieFile) {
		args = append(args, "--cookies", b.config.CookieFile)
	}
	return args
}

// ListFormats runs `yt-dlp -J` and returns every entry that has audio or video
func (b *YTDLPBackend) ListFormats(ctx context.Context, url string) ([]domain.RawFormat, error) {
	_, formats, err := b.Inspect(ctx, url)
	return formats, err
}

// Inspect runs `yt-dlp -J` once and returns the video metadata with the formats
func (b *YTDLPBackend) Inspect(ctx context.Context, url string) (*domain.VideoInfo, []domain.RawFormat, error) {
	args := b.listFormatsArgs(url)
	b.logger.Debug("Listing formats",
		zap.String("command", ShellEscapeCommand(b.config.YTDLPBinary, args...)))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, nil, commandError(ctx, stderr.Bytes(), err)
	}

	return parseInfo(stdout.Bytes())
}

// Download fetches url in formatID. With audioOnly the downloaded file is
// converted to an audio file and the original removed. Progress lines are
// reported through the ProgressFunc attached to ctx.
func (b *YTDLPBackend) Download(ctx context.Context, url, outputTemplate, formatID string, audioOnly bool) error {
	plog, err := openProcessLog(b.logsDir)
	if err != nil {
		return err
	}
	defer plog.Close()

	args := b.downloadArgs(url, outputTemplate, formatID, audioOnly)
	cmdLine := ShellEscapeCommand(b.config.YTDLPBinary, args...)
	plog.Header("Download: "+url, cmdLine)
	b.logger.Debug("Starting yt-dlp", zap.String("command", cmdLine))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.config.YTDLPBinary, args...)
	cmd.Stdout = io.MultiWriter(plog.Writer(), &stdout, newProgressWriter(ctx))
	cmd.Stderr = io.MultiWriter(plog.Writer(), &stderr, newProgressWriter(ctx))

	if err := cmd.Run(); err != nil {
		err = commandError(ctx, stderr.Bytes(), err)
		plog.Footer(false, err.Error())
		return err
	}

	path := reportedPath(stdout.Bytes())
	if !audioOnly {
		plog.Footer(true, "Downloaded: "+path)
		return nil
	}

	if path == "" {
		plog.Footer(false, "yt-dlp did not report the downloaded file")
		return errors.New("yt-dlp did not report the downloaded file")
	}

	audioPath, err := b.converter.ConvertToAudio(ctx, path)
	if err != nil {
		plog.Footer(false, err.Error())
		return err
	}

	plog.Footer(true, "Downloaded: "+audioPath)
	return nil
}

// commandError turns a failed run into an error carrying yt-dlp's own
// message when it printed one.
func commandError(ctx context.Context, stderr []byte, runErr error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
	}
	if msg := lastErrorLine(stderr); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("yt-dlp failed: %w", runErr)
}

// lastErrorLine returns the text after the last "ERROR:" prefix in output
func lastErrorLine(output []byte) string {
	var msg string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
			msg = strings.TrimSpace(rest)
		}
	}
	return msg
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
