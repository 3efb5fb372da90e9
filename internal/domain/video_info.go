package domain

import "context"

// VideoInfo is the metadata a backend reports alongside the format list
type VideoInfo struct {
	Title          string  `json:"title"`
	Duration       float64 `json:"duration,omitempty"`
	DurationString string  `json:"duration_string,omitempty"`
	Uploader       string  `json:"uploader,omitempty"`
	ViewCount      int64   `json:"view_count,omitempty"`
	Thumbnail      string  `json:"thumbnail,omitempty"`
	WebpageURL     string  `json:"webpage_url,omitempty"`
}

// Resolution is the outcome of resolving a URL: its formats in backend
// order and, when the backend reports it, the video metadata.
type Resolution struct {
	Info    *VideoInfo `json:"info,omitempty"`
	Formats []Format   `json:"formats"`
}

// InfoBackend is implemented by backends that report video metadata in
// the same call that lists formats.
type InfoBackend interface {
	Backend

	// Inspect returns the metadata and format tuples reported for url
	Inspect(ctx context.Context, url string) (*VideoInfo, []RawFormat, error)
}
