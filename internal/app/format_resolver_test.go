package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/freedl-go/internal/domain"
)

func TestResolve_EmptyURL(t *testing.T) {
	for _, url := range []string{"", " ", "\t\n", "   \r\n  "} {
		t.Run(fmt.Sprintf("%q", url), func(t *testing.T) {
			backend := &fakeBackend{formats: exampleFormats()}
			resolver := NewFormatResolver(backend, nil)

			result := resolver.Resolve(context.Background(), url)

			require.False(t, result.OK())
			assert.Equal(t, domain.KindInvalidInput, result.Err().Kind)
			assert.Equal(t, 0, backend.listCount(), "backend must not be called")
		})
	}
}

func TestResolve_MapsTuplesInOrder(t *testing.T) {
	backend := &fakeBackend{formats: exampleFormats()}
	resolver := NewFormatResolver(backend, nil)

	result := resolver.Resolve(context.Background(), "https://example.com/video123")

	require.True(t, result.OK())
	assert.Equal(t, []domain.Format{
		{ID: "22", Label: "720p mp4"},
		{ID: "18", Label: "360p mp4"},
	}, result.Value())
	assert.Equal(t, []string{"https://example.com/video123"}, backend.listCalls)
}

func TestResolve_PreservesBackendOrder(t *testing.T) {
	raw := []domain.RawFormat{
		domain.NewRawFormat("140", "140 - N/Ap - m4a"),
		domain.NewRawFormat("18", "18 - 360p - mp4"),
		domain.NewRawFormat("137", "137 - 1080p - mp4"),
		domain.NewRawFormat("22", "22 - 720p - mp4"),
	}
	resolver := NewFormatResolver(&fakeBackend{formats: raw}, nil)

	result := resolver.Resolve(context.Background(), "https://example.com/video123")

	require.True(t, result.OK())
	require.Len(t, result.Value(), len(raw))
	for i, f := range result.Value() {
		assert.Equal(t, raw[i][0], f.ID)
		assert.Equal(t, raw[i][1], f.Label)
	}
}

func TestResolve_TrimsURL(t *testing.T) {
	backend := &fakeBackend{formats: exampleFormats()}
	resolver := NewFormatResolver(backend, nil)

	resolver.Resolve(context.Background(), "  https://example.com/video123\n")

	assert.Equal(t, []string{"https://example.com/video123"}, backend.listCalls)
}

func TestResolve_BackendError(t *testing.T) {
	backend := &fakeBackend{
		formats: exampleFormats(),
		listErr: errors.New("Unsupported URL: https://example.com/video123"),
	}
	resolver := NewFormatResolver(backend, nil)

	result := resolver.Resolve(context.Background(), "https://example.com/video123")

	require.False(t, result.OK())
	assert.Nil(t, result.Value(), "no partial list on failure")
	assert.Equal(t, domain.KindBackendError, result.Err().Kind)
	assert.Equal(t, "Unsupported URL: https://example.com/video123", result.Err().Error())
	assert.Equal(t, 1, backend.listCount())
}

func TestResolve_EmptyBackendList(t *testing.T) {
	resolver := NewFormatResolver(&fakeBackend{}, nil)

	result := resolver.Resolve(context.Background(), "https://example.com/video123")

	require.True(t, result.OK())
	assert.NotNil(t, result.Value())
	assert.Empty(t, result.Value())
}

func TestResolve_DeadlineExceeded(t *testing.T) {
	backend := &fakeBackend{listErr: fmt.Errorf("yt-dlp: %w", context.DeadlineExceeded)}
	resolver := NewFormatResolver(backend, nil)

	result := resolver.Resolve(context.Background(), "https://example.com/video123")

	require.False(t, result.OK())
	assert.Equal(t, domain.KindBackendError, result.Err().Kind)
	assert.Equal(t, "backend timed out", result.Err().Message)
	assert.ErrorIs(t, result.Err(), context.DeadlineExceeded)
}

func TestInspect_ReportsVideoInfo(t *testing.T) {
	backend := &fakeInfoBackend{
		fakeBackend: &fakeBackend{formats: exampleFormats()},
		info:        &domain.VideoInfo{Title: "Big Buck Bunny", DurationString: "9:56", Uploader: "Blender", ViewCount: 1200},
	}
	resolver := NewFormatResolver(backend, nil)

	result := resolver.Inspect(context.Background(), "https://example.com/video123")

	require.True(t, result.OK())
	require.NotNil(t, result.Value().Info)
	assert.Equal(t, "Big Buck Bunny", result.Value().Info.Title)
	assert.Equal(t, int64(1200), result.Value().Info.ViewCount)
	assert.Len(t, result.Value().Formats, 2)
	assert.Equal(t, 1, backend.listCount(), "one backend call per resolution")
}

func TestInspect_WithoutInfoBackend(t *testing.T) {
	resolver := NewFormatResolver(&fakeBackend{formats: exampleFormats()}, nil)

	result := resolver.Inspect(context.Background(), "https://example.com/video123")

	require.True(t, result.OK())
	assert.Nil(t, result.Value().Info)
	assert.Len(t, result.Value().Formats, 2)
}

func TestInspect_BackendFailureHasNoInfo(t *testing.T) {
	backend := &fakeInfoBackend{
		fakeBackend: &fakeBackend{listErr: errors.New("Video unavailable")},
		info:        &domain.VideoInfo{Title: "never seen"},
	}
	resolver := NewFormatResolver(backend, nil)

	result := resolver.Inspect(context.Background(), "https://example.com/video123")

	require.False(t, result.OK())
	assert.Equal(t, domain.KindBackendError, result.Err().Kind)
	assert.Equal(t, "Video unavailable", result.Err().Error())
}
