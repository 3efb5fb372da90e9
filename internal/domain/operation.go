package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind is the kind of work an operation performed
type OperationKind string

const (
	KindResolve  OperationKind = "resolve"
	KindDownload OperationKind = "download"
)

// OperationStatus represents the lifecycle of a recorded operation
type OperationStatus string

const (
	StatusRunning   OperationStatus = "running"
	StatusSucceeded OperationStatus = "succeeded"
	StatusFailed    OperationStatus = "failed"
)

// Operation is the history record of one submitted resolve or download
type Operation struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	Kind         OperationKind   `json:"kind" gorm:"not null;index"`
	URL          string          `json:"url" gorm:"not null"`
	FormatID     string          `json:"format_id,omitempty"`
	AudioOnly    bool            `json:"audio_only"`
	Status       OperationStatus `json:"status" gorm:"not null;index"`
	ErrorKind    ErrorKind       `json:"error_kind,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	FormatCount  int             `json:"format_count,omitempty"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// NewResolveOperation creates a running resolve record
func NewResolveOperation(url string) *Operation {
	return newOperation(KindResolve, url)
}

// NewDownloadOperation creates a running download record
func NewDownloadOperation(req DownloadRequest) *Operation {
	op := newOperation(KindDownload, req.URL)
	op.FormatID = req.FormatID
	op.AudioOnly = req.AudioOnly
	return op
}

func newOperation(kind OperationKind, url string) *Operation {
	now := time.Now()
	return &Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		URL:       url,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkSucceeded marks the operation as succeeded
func (o *Operation) MarkSucceeded() {
	o.Status = StatusSucceeded
	o.ErrorKind = ""
	o.ErrorMessage = ""
	now := time.Now()
	o.CompletedAt = &now
	o.UpdatedAt = now
}

// MarkFailed marks the operation as failed
func (o *Operation) MarkFailed(err *OperationError) {
	o.Status = StatusFailed
	if err != nil {
		o.ErrorKind = err.Kind
		o.ErrorMessage = err.Message
	}
	now := time.Now()
	o.CompletedAt = &now
	o.UpdatedAt = now
}

// IsTerminal checks if the operation has finished
func (o *Operation) IsTerminal() bool {
	return o.Status == StatusSucceeded || o.Status == StatusFailed
}

// ValidateKind checks if an operation kind is valid
func ValidateKind(kind OperationKind) bool {
	return kind == KindResolve || kind == KindDownload
}

// ValidateStatus checks if an operation status is valid
func ValidateStatus(status OperationStatus) bool {
	return status == StatusRunning || status == StatusSucceeded || status == StatusFailed
}
