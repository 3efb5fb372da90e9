package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/internal/domain"
)

// FormatResolver lists the formats the backend reports for a URL
type FormatResolver struct {
	backend domain.Backend
	logger  *zap.Logger
}

// NewFormatResolver creates a new format resolver
func NewFormatResolver(backend domain.Backend, logger *zap.Logger) *FormatResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormatResolver{backend: backend, logger: logger}
}

// Resolve issues exactly one backend call and maps the tuples to
// Formats in backend order. A failing backend never yields a partial list.
func (r *FormatResolver) Resolve(ctx context.Context, url string) domain.Result[[]domain.Format] {
	result := r.Inspect(ctx, url)
	if !result.OK() {
		return domain.Failure[[]domain.Format](result.Err())
	}
	return domain.Success(result.Value().Formats)
}

// Inspect is Resolve plus the video metadata, for backends that report
// it. Backends without metadata yield a Resolution with nil Info.
func (r *FormatResolver) Inspect(ctx context.Context, url string) domain.Result[domain.Resolution] {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.Failure[domain.Resolution](domain.InvalidInput("url must not be empty"))
	}

	r.logger.Info("Resolving formats", zap.String("url", url))

	var (
		info *domain.VideoInfo
		raw  []domain.RawFormat
		err  error
	)
	if ib, ok := r.backend.(domain.InfoBackend); ok {
		info, raw, err = ib.Inspect(ctx, url)
	} else {
		raw, err = r.backend.ListFormats(ctx, url)
	}
	if err != nil {
		r.logger.Warn("Format listing failed", zap.String("url", url), zap.Error(err))
		return domain.Failure[domain.Resolution](backendError(err))
	}

	formats := make([]domain.Format, 0, len(raw))
	for _, tuple := range raw {
		formats = append(formats, tuple.ToFormat())
	}

	r.logger.Info("Formats resolved", zap.String("url", url), zap.Int("count", len(formats)))
	return domain.Success(domain.Resolution{Info: info, Formats: formats})
}

// backendError classifies a backend error; a context that expired while
// the backend ran is still a backend failure, with a clearer message.
func backendError(err error) *domain.OperationError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.OperationError{Kind: domain.KindBackendError, Message: "backend timed out", Err: err}
	}
	return domain.BackendFailure(err)
}
