package remover

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UnendingLoop/BgRemover/internal/model"
	"github.com/stretchr/testify/require"
)

// тестовый источник картинок: /img отдает image/*, /html отдает текст, /missing отдает 404
func newSourceServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/img"):
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case strings.HasPrefix(r.URL.Path, "/html"):
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https ok", url: "https://x/a.jpg", wantErr: false},
		{name: "http ok", url: "http://x/a.jpg", wantErr: false},
		{name: "no scheme", url: "x/a.jpg", wantErr: true},
		{name: "wrong scheme", url: "ftp://x/a.jpg", wantErr: true},
		{name: "no host", url: "https:///a.jpg", wantErr: true},
		{name: "garbage", url: "::::", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrIncorrectURL)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// PROCESS - SUCCESS
func TestRemover_Process_OK(t *testing.T) {
	src := newSourceServer()
	defer src.Close()

	vendor := &mockVendor{
		removeFn: func(ctx context.Context, image []byte) ([]byte, error) {
			require.Equal(t, []byte("jpeg-bytes"), image)
			return []byte("processed-png"), nil
		},
	}

	r := NewRemover(vendor, 5*time.Second)

	data, err := r.Process(context.Background(), src.URL+"/img/a.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("processed-png"), data)
}

// PROCESS - SOURCE IS NOT AN IMAGE
func TestRemover_Process_NotAnImage(t *testing.T) {
	src := newSourceServer()
	defer src.Close()

	r := NewRemover(&mockVendor{}, 5*time.Second)

	_, err := r.Process(context.Background(), src.URL+"/html/page")
	require.ErrorIs(t, err, model.ErrNotAnImage)
}

// PROCESS - SOURCE RETURNS 404
func TestRemover_Process_SourceMissing(t *testing.T) {
	src := newSourceServer()
	defer src.Close()

	r := NewRemover(&mockVendor{}, 5*time.Second)

	_, err := r.Process(context.Background(), src.URL+"/missing.jpg")
	require.ErrorIs(t, err, model.ErrNotAnImage)
}

// PROCESS - SOURCE UNREACHABLE
func TestRemover_Process_SourceUnreachable(t *testing.T) {
	src := newSourceServer()
	src.Close() // сервер уже мертв

	r := NewRemover(&mockVendor{}, time.Second)

	_, err := r.Process(context.Background(), src.URL+"/img/a.jpg")

	var network *model.NetworkError
	require.True(t, errors.As(err, &network))
}

// PROCESS - VENDOR ERROR PASSES THROUGH TYPED
func TestRemover_Process_VendorError(t *testing.T) {
	src := newSourceServer()
	defer src.Close()

	vendor := &mockVendor{
		removeFn: func(ctx context.Context, image []byte) ([]byte, error) {
			return nil, &model.UpstreamError{Code: 402, Message: "quota exceeded"}
		},
	}

	r := NewRemover(vendor, 5*time.Second)

	_, err := r.Process(context.Background(), src.URL+"/img/a.jpg")

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, 402, upstream.Code)
}

// PROCESSBATCH - PER-ITEM ISOLATION, ORDER PRESERVED
func TestRemover_ProcessBatch_MixedOutcomes(t *testing.T) {
	src := newSourceServer()
	defer src.Close()

	vendor := &mockVendor{
		removeFn: func(ctx context.Context, image []byte) ([]byte, error) {
			return []byte("processed-png"), nil
		},
	}

	r := NewRemover(vendor, 5*time.Second)

	urls := []string{
		src.URL + "/img/a.jpg",
		src.URL + "/html/bad",
		src.URL + "/img/b.jpg",
	}

	images, outcomes := r.ProcessBatch(context.Background(), urls)
	require.Len(t, outcomes, 3)
	require.Len(t, images, 3)

	// порядок исходов соответствует порядку входных URL
	for i, u := range urls {
		require.Equal(t, u, outcomes[i].SourceURL)
	}

	require.True(t, outcomes[0].Success)
	require.NotEmpty(t, images[0])
	require.False(t, outcomes[1].Success)
	require.NotEmpty(t, outcomes[1].Error)
	require.Nil(t, images[1])
	require.True(t, outcomes[2].Success)
}

// PROCESSBATCH - ALL FAIL, NO PANIC
func TestRemover_ProcessBatch_AllFail(t *testing.T) {
	vendor := &mockVendor{}
	r := NewRemover(vendor, time.Second)

	_, outcomes := r.ProcessBatch(context.Background(), []string{"bad-url-1", "bad-url-2"})
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		require.False(t, o.Success)
		require.NotEmpty(t, o.Error)
	}
}
