package infrastructure

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/freedl-go/internal/domain"
)

// progressPrefix marks the lines yt-dlp prints through progressTemplate
const progressPrefix = "[freedl-progress]"

// progressTemplate makes yt-dlp print one machine-readable line per
// progress update. Unknown fields render as NA.
const progressTemplate = "download:" + progressPrefix +
	" %(progress.downloaded_bytes)s %(progress.total_bytes)s %(progress.total_bytes_estimate)s" +
	" %(progress.speed)s %(progress.eta)s"

// downloadPercentPattern matches yt-dlp's default "[download]  42.0% of ..." line
var downloadPercentPattern = regexp.MustCompile(`^\[download\]\s+([\d.]+)%`)

// parseProgressLine extracts a progress snapshot from one line of yt-dlp output
func parseProgressLine(line string) (domain.Progress, bool) {
	line = strings.TrimSpace(line)

	if rest, ok := strings.CutPrefix(line, progressPrefix); ok {
		fields := strings.Fields(rest)
		if len(fields) != 5 {
			return domain.Progress{}, false
		}
		p := domain.Progress{
			DownloadedBytes: parseInt(fields[0]),
			TotalBytes:      parseInt(fields[1]),
			Speed:           parseFloat(fields[3]),
			ETA:             time.Duration(parseFloat(fields[4]) * float64(time.Second)),
		}
		if p.TotalBytes == 0 {
			p.TotalBytes = parseInt(fields[2])
		}
		if p.TotalBytes > 0 {
			p.Percent = float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100
		}
		return p, true
	}

	if m := downloadPercentPattern.FindStringSubmatch(line); m != nil {
		percent, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return domain.Progress{}, false
		}
		return domain.Progress{Percent: percent}, true
	}

	return domain.Progress{}, false
}

// parseInt reads a byte count; yt-dlp may print it as a float or NA
func parseInt(s string) int64 {
	return int64(parseFloat(s))
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// progressWriter splits one output stream into lines and reports the
// progress lines through ctx
type progressWriter struct {
	ctx context.Context
	buf []byte
}

func newProgressWriter(ctx context.Context) *progressWriter {
	return &progressWriter{ctx: ctx}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		if progress, ok := parseProgressLine(line); ok {
			domain.ReportProgress(w.ctx, progress)
		}
	}
	return len(p), nil
}

// reportedPath returns the file path yt-dlp printed last, skipping
// progress lines.
func reportedPath(stdout []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, progressPrefix) || strings.HasPrefix(line, "[download]") {
			continue
		}
		return line
	}
	return ""
}
