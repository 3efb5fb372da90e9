package domain

import "context"

// Backend is the external extraction service. Both calls block for the
// duration of the network work.
type Backend interface {
	// ListFormats returns the (formatId, label) tuples reported for url, in backend order
	ListFormats(ctx context.Context, url string) ([]RawFormat, error)

	// Download fetches url in the given format to outputTemplate. Template
	// tokens such as %(title)s and %(ext)s are expanded by the backend.
	Download(ctx context.Context, url, outputTemplate, formatID string, audioOnly bool) error
}
