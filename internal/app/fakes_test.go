package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourusername/freedl-go/internal/domain"
)

type downloadCall struct {
	URL            string
	OutputTemplate string
	FormatID       string
	AudioOnly      bool
}

// fakeBackend implements domain.Backend for testing
type fakeBackend struct {
	mu            sync.Mutex
	formats       []domain.RawFormat
	listErr       error
	downloadErr   error
	listCalls     []string
	downloadCalls []downloadCall
	// progress is reported through the context before Download returns
	progress []domain.Progress
	// onDownload runs inside Download before it returns, if set
	onDownload func(ctx context.Context, call downloadCall) error
}

func (f *fakeBackend) ListFormats(ctx context.Context, url string) ([]domain.RawFormat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, url)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.formats, nil
}

func (f *fakeBackend) Download(ctx context.Context, url, outputTemplate, formatID string, audioOnly bool) error {
	call := downloadCall{URL: url, OutputTemplate: outputTemplate, FormatID: formatID, AudioOnly: audioOnly}
	f.mu.Lock()
	f.downloadCalls = append(f.downloadCalls, call)
	hook := f.onDownload
	err := f.downloadErr
	progress := f.progress
	f.mu.Unlock()

	for _, p := range progress {
		domain.ReportProgress(ctx, p)
	}

	if hook != nil {
		if hookErr := hook(ctx, call); hookErr != nil {
			return hookErr
		}
	}
	return err
}

// fakeInfoBackend also reports video metadata
type fakeInfoBackend struct {
	*fakeBackend
	info *domain.VideoInfo
}

func (f *fakeInfoBackend) Inspect(ctx context.Context, url string) (*domain.VideoInfo, []domain.RawFormat, error) {
	raw, err := f.ListFormats(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return f.info, raw, nil
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeBackend) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloadCalls)
}

// fakeHistory implements domain.OperationRepository for testing
type fakeHistory struct {
	mu  sync.Mutex
	ops map[string]domain.Operation
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{ops: make(map[string]domain.Operation)}
}

func (h *fakeHistory) Create(op *domain.Operation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops[op.ID] = *op
	return nil
}

func (h *fakeHistory) Update(op *domain.Operation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ops[op.ID]; !ok {
		return fmt.Errorf("operation %s not found", op.ID)
	}
	h.ops[op.ID] = *op
	return nil
}

func (h *fakeHistory) FindByID(id string) (*domain.Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	op, ok := h.ops[id]
	if !ok {
		return nil, domain.ErrOperationNotFound
	}
	return &op, nil
}

func (h *fakeHistory) FindAll(filter domain.OperationFilter) ([]*domain.Operation, error) {
	return nil, nil
}

func (h *fakeHistory) GetStats() (*domain.OperationStats, error) {
	return &domain.OperationStats{}, nil
}

// fakeNotifier records notifications
type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (n *fakeNotifier) NotifyDownloadCompleted(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, url)
}

func (n *fakeNotifier) NotifyDownloadFailed(url string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, url+": "+err.Error())
}

func exampleFormats() []domain.RawFormat {
	return []domain.RawFormat{
		domain.NewRawFormat("22", "720p mp4"),
		domain.NewRawFormat("18", "360p mp4"),
	}
}
