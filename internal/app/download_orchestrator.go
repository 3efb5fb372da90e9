package app

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/internal/domain"
)

// DownloadOrchestrator hands a chosen format to the backend's download
// entry point.
type DownloadOrchestrator struct {
	backend         domain.Backend
	defaultTemplate string
	locks           *PathLocks
	logger          *zap.Logger
}

// NewDownloadOrchestrator creates a new download orchestrator.
// defaultTemplate is used when a request carries no output template.
func NewDownloadOrchestrator(backend domain.Backend, defaultTemplate string, logger *zap.Logger) *DownloadOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadOrchestrator{
		backend:         backend,
		defaultTemplate: defaultTemplate,
		locks:           NewPathLocks(),
		logger:          logger,
	}
}

// Download issues exactly one backend download call. Success is reported
// only after the backend returns; failures are terminal, with no retry.
// Downloads that would write the same file run one at a time.
func (o *DownloadOrchestrator) Download(ctx context.Context, req domain.DownloadRequest) domain.Result[domain.Unit] {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Failure[domain.Unit](err)
	}
	if req.OutputTemplate == "" {
		req.OutputTemplate = o.defaultTemplate
	}
	if req.OutputTemplate == "" {
		return domain.Failure[domain.Unit](domain.InvalidInput("output template must not be empty"))
	}

	release, err := o.locks.Acquire(ctx, outputKey(req))
	if err != nil {
		return domain.Failure[domain.Unit](domain.Cancelled("gave up waiting for output path: " + err.Error()))
	}
	defer release()

	o.logger.Info("Starting download",
		zap.String("url", req.URL),
		zap.String("format_id", req.FormatID),
		zap.String("output", req.OutputTemplate),
		zap.Bool("audio_only", req.AudioOnly))

	if err := o.backend.Download(ctx, req.URL, req.OutputTemplate, req.FormatID, req.AudioOnly); err != nil {
		o.logger.Warn("Download failed",
			zap.String("url", req.URL),
			zap.String("format_id", req.FormatID),
			zap.Error(err))
		return domain.Failure[domain.Unit](backendError(err))
	}

	o.logger.Info("Download completed",
		zap.String("url", req.URL),
		zap.String("format_id", req.FormatID))
	return domain.Success(domain.Unit{})
}

// outputKey names the file a request writes. A template with %(...)s
// tokens expands per video, so only requests for the same URL and format
// can collide on it; a literal path collides with every request using it.
func outputKey(req domain.DownloadRequest) string {
	path := filepath.Clean(req.OutputTemplate)
	if !strings.Contains(path, "%(") {
		return path
	}
	return strings.Join([]string{path, req.URL, req.FormatID}, "\n")
}
