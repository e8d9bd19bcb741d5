package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Retries = 2
	opts.RetryWaitMin = time.Millisecond
	opts.RetryWaitMax = 5 * time.Millisecond
	opts.Timeout = 5 * time.Second
	return opts
}

func TestDownloadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "webdesk-packages/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	client := NewClient(testOptions())
	result, err := client.Download(context.Background(), srv.URL+"/pkg.tgz")
	require.NoError(t, err)

	assert.Equal(t, []byte("archive-bytes"), result.Body)
	assert.Equal(t, "application/gzip", result.ContentType)
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(testOptions())
	result, err := client.Download(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []byte("ok"), result.Body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewClient(testOptions())
	_, err := client.Download(context.Background(), srv.URL+"/missing.tgz")

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusNotFound, status.Code)
	assert.False(t, isFailure(err))
}

func TestDownloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.MaxBytes = 16
	client := NewClient(opts)

	_, err := client.Download(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDownloadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testOptions())
	_, err := client.Download(ctx, "http://127.0.0.1:1/never")
	assert.Error(t, err)
}

func TestIsFailure(t *testing.T) {
	assert.False(t, isFailure(nil))
	assert.False(t, isFailure(&StatusError{Code: http.StatusForbidden}))
	assert.True(t, isFailure(&StatusError{Code: http.StatusServiceUnavailable}))
	assert.True(t, isFailure(errors.New("connection refused")))
}
