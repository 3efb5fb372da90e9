package app

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/internal/domain"
	"github.com/yourusername/freedl-go/pkg/logger"
)

// Notifier is told about terminal download outcomes
type Notifier interface {
	NotifyDownloadCompleted(url string)
	NotifyDownloadFailed(url string, err error)
}

// SessionOptions configures a Session
type SessionOptions struct {
	// StrictFormats rejects downloads whose format id did not come from
	// the most recent successful resolution of the same URL.
	StrictFormats bool
	History       domain.OperationRepository
	Notifier      Notifier
	EventLogger   *logger.MultiLogger
	Logger        *zap.Logger
}

// Session is the consumer-facing surface: asynchronous resolve and
// download, plus the format list the consumer is currently picking from.
// Every URL's latest successful resolution is kept, so strict checks
// hold per URL while URL and Formats follow the most recent one.
type Session struct {
	runner       *TaskRunner
	resolver     *FormatResolver
	orchestrator *DownloadOrchestrator
	opts         SessionOptions
	logger       *zap.Logger

	mu          sync.RWMutex
	resolutions map[string]resolution
	url         string
	resolveSeq  uint64
	appliedSeq  uint64
}

type resolution struct {
	seq     uint64
	info    *domain.VideoInfo
	formats []domain.Format
}

// NewSession wires a session over a runner and the two core components
func NewSession(runner *TaskRunner, resolver *FormatResolver, orchestrator *DownloadOrchestrator, opts SessionOptions) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		runner:       runner,
		resolver:     resolver,
		orchestrator: orchestrator,
		opts:         opts,
		logger:       log,
		resolutions:  make(map[string]resolution),
	}
}

// ResolveFormats lists formats for url asynchronously. On success the
// session's format list is replaced before onComplete runs; a stale
// resolution finishing after a newer one does not overwrite it.
// It returns the id of the recorded operation.
func (s *Session) ResolveFormats(url string, onComplete func(domain.Result[[]domain.Format])) string {
	return s.Inspect(url, func(result domain.Result[domain.Resolution]) {
		if onComplete == nil {
			return
		}
		if !result.OK() {
			onComplete(domain.Failure[[]domain.Format](result.Err()))
			return
		}
		onComplete(domain.Success(result.Value().Formats))
	})
}

// Inspect is ResolveFormats delivering the video metadata along with
// the formats.
func (s *Session) Inspect(url string, onComplete func(domain.Result[domain.Resolution])) string {
	url = strings.TrimSpace(url)
	op := domain.NewResolveOperation(url)
	s.record(op)
	s.event("resolve_started", op)

	s.mu.Lock()
	s.resolveSeq++
	seq := s.resolveSeq
	s.mu.Unlock()

	Submit(s.runner, "resolve", func(ctx context.Context) domain.Result[domain.Resolution] {
		result := s.resolver.Inspect(ctx, url)
		if result.OK() {
			s.apply(seq, url, result.Value())
			op.FormatCount = len(result.Value().Formats)
		}
		s.finish(op, result.Err())
		return result
	}, onComplete)

	return op.ID
}

func (s *Session) apply(seq uint64, url string, res domain.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.resolutions[url]; !ok || seq >= prev.seq {
		s.resolutions[url] = resolution{seq: seq, info: res.Info, formats: res.Formats}
	}
	if seq >= s.appliedSeq {
		s.appliedSeq = seq
		s.url = url
	}
}

// StartDownload downloads req asynchronously and returns the id of the
// recorded operation. Validation failures are delivered through
// onComplete like any other failure.
func (s *Session) StartDownload(req domain.DownloadRequest, onComplete func(domain.Result[domain.Unit])) string {
	return s.StartDownloadWithProgress(req, nil, onComplete)
}

// StartDownloadWithProgress is StartDownload with progress snapshots
// delivered to onProgress through the runner's dispatcher, each before
// onComplete. A nil onProgress disables reporting.
func (s *Session) StartDownloadWithProgress(req domain.DownloadRequest, onProgress domain.ProgressFunc, onComplete func(domain.Result[domain.Unit])) string {
	req = req.Normalize()
	op := domain.NewDownloadOperation(req)
	s.record(op)
	s.event("download_started", op)

	precheck := s.checkFormat(req)

	Submit(s.runner, "download", func(ctx context.Context) domain.Result[domain.Unit] {
		var result domain.Result[domain.Unit]
		if precheck != nil {
			result = domain.Failure[domain.Unit](precheck)
		} else {
			if onProgress != nil {
				ctx = domain.WithProgress(ctx, func(p domain.Progress) {
					s.runner.dispatch(func() { onProgress(p) })
				})
			}
			result = s.orchestrator.Download(ctx, req)
		}
		s.finish(op, result.Err())
		s.notify(req.URL, result.Err())
		return result
	}, onComplete)

	return op.ID
}

func (s *Session) checkFormat(req domain.DownloadRequest) error {
	if !s.opts.StrictFormats {
		return nil
	}
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resolutions[req.URL]
	if !ok {
		return domain.InvalidInput("formats for %s have not been resolved", req.URL)
	}
	if !domain.ContainsFormat(res.formats, req.FormatID) {
		return domain.InvalidInput("format %s is not available for %s", req.FormatID, req.URL)
	}
	return nil
}

// URL returns the URL of the current format list
func (s *Session) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// Formats returns a copy of the current format list
func (s *Session) Formats() []domain.Format {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current := s.resolutions[s.url].formats
	out := make([]domain.Format, len(current))
	copy(out, current)
	return out
}

// DefaultFormat returns the first format in backend order
func (s *Session) DefaultFormat() (domain.Format, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current := s.resolutions[s.url].formats
	if len(current) == 0 {
		return domain.Format{}, false
	}
	return current[0], true
}

// LookupFormat finds a format of the current list by id
func (s *Session) LookupFormat(id string) (domain.Format, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.resolutions[s.url].formats {
		if f.ID == id {
			return f, true
		}
	}
	return domain.Format{}, false
}

// Resolution returns the latest successful resolution of url
func (s *Session) Resolution(url string) (domain.Resolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resolutions[strings.TrimSpace(url)]
	if !ok {
		return domain.Resolution{}, false
	}
	formats := make([]domain.Format, len(res.formats))
	copy(formats, res.formats)
	return domain.Resolution{Info: res.info, Formats: formats}, true
}

// Runner returns the session's task runner
func (s *Session) Runner() *TaskRunner {
	return s.runner
}

func (s *Session) finish(op *domain.Operation, err *domain.OperationError) {
	if err == nil {
		op.MarkSucceeded()
		s.event(string(op.Kind)+"_succeeded", op)
	} else {
		op.MarkFailed(err)
		s.event(string(op.Kind)+"_failed", op)
		if s.opts.EventLogger != nil && err.Kind == domain.KindBackendError {
			s.opts.EventLogger.LogAppError("Backend operation failed",
				zap.String("id", op.ID),
				zap.String("kind", string(op.Kind)),
				zap.String("url", op.URL),
				zap.Error(err))
		}
	}
	s.update(op)
}

func (s *Session) notify(url string, err *domain.OperationError) {
	if s.opts.Notifier == nil {
		return
	}
	if err == nil {
		s.opts.Notifier.NotifyDownloadCompleted(url)
		return
	}
	s.opts.Notifier.NotifyDownloadFailed(url, err)
}

func (s *Session) record(op *domain.Operation) {
	if s.opts.History == nil {
		return
	}
	if err := s.opts.History.Create(op); err != nil {
		s.logger.Error("Failed to record operation", zap.String("id", op.ID), zap.Error(err))
	}
}

func (s *Session) update(op *domain.Operation) {
	if s.opts.History == nil {
		return
	}
	if err := s.opts.History.Update(op); err != nil {
		s.logger.Error("Failed to update operation", zap.String("id", op.ID), zap.Error(err))
	}
}

func (s *Session) event(name string, op *domain.Operation) {
	if s.opts.EventLogger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("id", op.ID),
		zap.String("url", op.URL),
		zap.String("status", string(op.Status)),
	}
	if op.FormatID != "" {
		fields = append(fields, zap.String("format_id", op.FormatID), zap.Bool("audio_only", op.AudioOnly))
	}
	if op.Kind == domain.KindResolve && op.IsTerminal() {
		fields = append(fields, zap.Int("formats", op.FormatCount))
	}
	if op.ErrorMessage != "" {
		fields = append(fields, zap.String("error_kind", string(op.ErrorKind)), zap.String("error", op.ErrorMessage))
	}
	s.opts.EventLogger.LogOperationEvent(name, fields...)
}
