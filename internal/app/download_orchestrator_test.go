package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/freedl-go/internal/domain"
)

func exampleRequest() domain.DownloadRequest {
	return domain.DownloadRequest{
		URL:            "https://example.com/video123",
		FormatID:       "22",
		OutputTemplate: "/out/%(title)s.%(ext)s",
		AudioOnly:      false,
	}
}

func TestDownload_Success(t *testing.T) {
	backend := &fakeBackend{}
	orch := NewDownloadOrchestrator(backend, "/default/%(title)s.%(ext)s", nil)

	result := orch.Download(context.Background(), exampleRequest())

	require.True(t, result.OK())
	assert.Equal(t, domain.Unit{}, result.Value())
	require.Len(t, backend.downloadCalls, 1)
	assert.Equal(t, downloadCall{
		URL:            "https://example.com/video123",
		OutputTemplate: "/out/%(title)s.%(ext)s",
		FormatID:       "22",
		AudioOnly:      false,
	}, backend.downloadCalls[0])
}

func TestDownload_BackendErrorIsTerminal(t *testing.T) {
	backend := &fakeBackend{downloadErr: errors.New("Unsupported format")}
	orch := NewDownloadOrchestrator(backend, "", nil)

	result := orch.Download(context.Background(), exampleRequest())

	require.False(t, result.OK())
	assert.Equal(t, domain.KindBackendError, result.Err().Kind)
	assert.Equal(t, "Unsupported format", result.Err().Error())
	assert.Equal(t, 1, backend.downloadCount(), "no retry after a backend failure")
}

func TestDownload_PassesAudioOnly(t *testing.T) {
	backend := &fakeBackend{}
	orch := NewDownloadOrchestrator(backend, "", nil)

	req := exampleRequest()
	req.AudioOnly = true
	req.FormatID = "140"
	orch.Download(context.Background(), req)

	require.Len(t, backend.downloadCalls, 1)
	assert.True(t, backend.downloadCalls[0].AudioOnly)
	assert.Equal(t, "140", backend.downloadCalls[0].FormatID)
}

func TestDownload_DefaultTemplate(t *testing.T) {
	backend := &fakeBackend{}
	orch := NewDownloadOrchestrator(backend, "/sdcard/Download/%(title)s.%(ext)s", nil)

	req := exampleRequest()
	req.OutputTemplate = ""
	result := orch.Download(context.Background(), req)

	require.True(t, result.OK())
	assert.Equal(t, "/sdcard/Download/%(title)s.%(ext)s", backend.downloadCalls[0].OutputTemplate)
}

func TestDownload_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  domain.DownloadRequest
	}{
		{name: "empty url", req: domain.DownloadRequest{URL: "  ", FormatID: "22", OutputTemplate: "/out/x"}},
		{name: "empty format", req: domain.DownloadRequest{URL: "https://example.com/v", OutputTemplate: "/out/x"}},
		{name: "no template anywhere", req: domain.DownloadRequest{URL: "https://example.com/v", FormatID: "22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			orch := NewDownloadOrchestrator(backend, "", nil)

			result := orch.Download(context.Background(), tt.req)

			require.False(t, result.OK())
			assert.Equal(t, domain.KindInvalidInput, result.Err().Kind)
			assert.Equal(t, 0, backend.downloadCount())
		})
	}
}

func TestDownload_SerializesSameOutputPath(t *testing.T) {
	var active, maxActive int32
	backend := &fakeBackend{
		onDownload: func(ctx context.Context, call downloadCall) error {
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			return nil
		},
	}
	orch := NewDownloadOrchestrator(backend, "", nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			orch.Download(context.Background(), exampleRequest())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
	assert.Equal(t, 4, backend.downloadCount())
}

func TestDownload_CancelledWhileWaitingForPath(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	backend := &fakeBackend{
		onDownload: func(ctx context.Context, call downloadCall) error {
			close(started)
			<-unblock
			return nil
		},
	}
	orch := NewDownloadOrchestrator(backend, "", nil)

	go orch.Download(context.Background(), exampleRequest())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	result := orch.Download(ctx, exampleRequest())
	close(unblock)

	require.False(t, result.OK())
	assert.Equal(t, domain.KindCancelled, result.Err().Kind)
	assert.Equal(t, 1, backend.downloadCount())
}

func TestDownload_TokenTemplateRunsDifferentVideosInParallel(t *testing.T) {
	const videos = 3
	var started int32
	allStarted := make(chan struct{})
	backend := &fakeBackend{
		onDownload: func(ctx context.Context, call downloadCall) error {
			if atomic.AddInt32(&started, 1) == videos {
				close(allStarted)
			}
			select {
			case <-allStarted:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("downloads did not overlap")
			}
		},
	}
	orch := NewDownloadOrchestrator(backend, "/out/%(title)s.%(ext)s", nil)

	results := make([]domain.Result[domain.Unit], videos)
	var wg sync.WaitGroup
	for i := 0; i < videos; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := domain.DownloadRequest{URL: fmt.Sprintf("https://example.com/video%d", i), FormatID: "22"}
			results[i] = orch.Download(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		assert.True(t, result.OK(), "download %d: %v", i, result.Err())
	}
	assert.Equal(t, 0, orch.locks.Len())
}

func TestDownload_LiteralPathSerializesDifferentVideos(t *testing.T) {
	var active, maxActive int32
	backend := &fakeBackend{
		onDownload: func(ctx context.Context, call downloadCall) error {
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			return nil
		},
	}
	orch := NewDownloadOrchestrator(backend, "/out/latest.mp4", nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orch.Download(context.Background(), domain.DownloadRequest{URL: fmt.Sprintf("https://example.com/video%d", i), FormatID: "22"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
}

func TestOutputKey(t *testing.T) {
	a := domain.DownloadRequest{URL: "https://example.com/a", FormatID: "22", OutputTemplate: "/out/%(title)s.%(ext)s"}
	b := domain.DownloadRequest{URL: "https://example.com/b", FormatID: "22", OutputTemplate: "/out/%(title)s.%(ext)s"}
	audio := a
	audio.AudioOnly = true

	assert.NotEqual(t, outputKey(a), outputKey(b))
	assert.Equal(t, outputKey(a), outputKey(audio), "audio-only downloads the same intermediate file")

	literalA := domain.DownloadRequest{URL: "https://example.com/a", FormatID: "22", OutputTemplate: "/out/./clip.mp4"}
	literalB := domain.DownloadRequest{URL: "https://example.com/b", FormatID: "18", OutputTemplate: "/out/clip.mp4"}
	assert.Equal(t, outputKey(literalA), outputKey(literalB))
}
