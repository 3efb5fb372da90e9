package domain

import "strings"

// Format is an encoding/quality variant of a media resource as reported
// by the extraction backend.
type Format struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RawFormat is the backend's (formatId, label) tuple.
type RawFormat [2]string

// NewRawFormat builds a RawFormat tuple
func NewRawFormat(id, label string) RawFormat {
	return RawFormat{id, label}
}

// ToFormat maps the tuple positionally: element 0 is the id, element 1 the label.
func (r RawFormat) ToFormat() Format {
	return Format{ID: r[0], Label: r[1]}
}

// ContainsFormat reports whether formats holds an entry with the given id.
func ContainsFormat(formats []Format, id string) bool {
	for _, f := range formats {
		if f.ID == id {
			return true
		}
	}
	return false
}

// DownloadRequest describes a single download of one chosen format
type DownloadRequest struct {
	URL            string `json:"url"`
	FormatID       string `json:"format_id"`
	OutputTemplate string `json:"output_template,omitempty"`
	AudioOnly      bool   `json:"audio_only"`
}

// Normalize trims surrounding whitespace from the URL and format id
func (r DownloadRequest) Normalize() DownloadRequest {
	r.URL = strings.TrimSpace(r.URL)
	r.FormatID = strings.TrimSpace(r.FormatID)
	return r
}

// Validate checks the fields a download cannot be issued without
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return InvalidInput("url must not be empty")
	}
	if strings.TrimSpace(r.FormatID) == "" {
		return InvalidInput("format id must not be empty")
	}
	return nil
}
