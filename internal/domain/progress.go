package domain

import (
	"context"
	"time"
)

// Progress is a snapshot of a running download. Zero values mean the
// backend did not report that field.
type Progress struct {
	DownloadedBytes int64         `json:"downloaded_bytes"`
	TotalBytes      int64         `json:"total_bytes"`
	Percent         float64       `json:"percent"`
	Speed           float64       `json:"speed"`
	ETA             time.Duration `json:"eta"`
}

// ProgressFunc receives progress snapshots of one download
type ProgressFunc func(Progress)

type progressKey struct{}

// WithProgress attaches fn to ctx so a backend can report download progress
// without it being part of the Backend contract.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress hands p to the ProgressFunc attached to ctx, if any
func ReportProgress(ctx context.Context, p Progress) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok {
		fn(p)
	}
}

