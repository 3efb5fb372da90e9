package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yourusername/freedl-go/internal/domain"
)

// printVideoInfo writes the metadata block shown above a format list
func printVideoInfo(w io.Writer, info *domain.VideoInfo) {
	if info == nil {
		return
	}
	if info.Title != "" {
		fmt.Fprintf(w, "Title:    %s\n", info.Title)
	}
	if d := durationText(info); d != "" {
		fmt.Fprintf(w, "Duration: %s\n", d)
	}
	if info.Uploader != "" {
		fmt.Fprintf(w, "Uploader: %s\n", info.Uploader)
	}
	if info.ViewCount > 0 {
		fmt.Fprintf(w, "Views:    %s\n", humanize.Comma(info.ViewCount))
	}
	fmt.Fprintln(w)
}

func durationText(info *domain.VideoInfo) string {
	if info.DurationString != "" {
		return info.DurationString
	}
	if info.Duration > 0 {
		return (time.Duration(info.Duration) * time.Second).String()
	}
	return ""
}

// progressLine renders one progress snapshot, e.g.
// "  42.5%  4.2 MiB of 10 MiB  1.0 MiB/s  ETA 6s"
func progressLine(p domain.Progress) string {
	parts := []string{fmt.Sprintf("%5.1f%%", p.Percent)}
	if p.TotalBytes > 0 {
		parts = append(parts, fmt.Sprintf("%s of %s",
			humanize.IBytes(uint64(p.DownloadedBytes)), humanize.IBytes(uint64(p.TotalBytes))))
	}
	if p.Speed > 0 {
		parts = append(parts, humanize.IBytes(uint64(p.Speed))+"/s")
	}
	if p.ETA > 0 {
		parts = append(parts, "ETA "+p.ETA.Round(time.Second).String())
	}
	return "  " + strings.Join(parts, "  ")
}
