package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "get-rust", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	err := NewDownloader(0).Download(context.Background(), server.URL+"/rust.tar.gz", &buf)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", buf.String())
}

func TestDownloadStatusError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	var buf bytes.Buffer
	err := NewDownloader(0).Download(context.Background(), server.URL+"/missing", &buf)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, err.Error(), "404")
	assert.Zero(t, buf.Len())
}

func TestDownloadTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewDownloader(time.Second).Download(context.Background(), url, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "downloading file")
}

func TestDownloadCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDownloader(0).Download(ctx, server.URL, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDownloadNilClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	d := &Downloader{}
	require.NoError(t, d.Download(context.Background(), server.URL, &buf))
	assert.Equal(t, "ok", buf.String())
}
