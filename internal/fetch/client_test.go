package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := New(nil, "tester")
	data, err := c.Bytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "tester", gotUA)
}

func TestBytesNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(nil, "").Bytes(context.Background(), srv.URL+"/missing")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Equal(t, srv.URL+"/missing", fe.URL)
	assert.Contains(t, fe.Error(), "does not exist")
}

func TestBytesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.Client(), "")
	c.Timeout = 50 * time.Millisecond
	_, err := c.Bytes(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStreamReportsProgress(t *testing.T) {
	body := strings.Repeat("x", 200*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	var calls int
	var last int64
	data, err := New(nil, "").Stream(context.Background(), srv.URL, 1024, func(n int64) {
		calls++
		assert.GreaterOrEqual(t, n, last)
		last = n
	})
	require.NoError(t, err)
	assert.Len(t, data, len(body))
	assert.Equal(t, int64(len(body)), last)
	assert.Positive(t, calls)
}

func TestStreamInterrupted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	_, err := New(nil, "").Stream(context.Background(), srv.URL, 0, nil)
	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "download", fe.Operation)
}

func TestOpenConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(nil, "").Open(context.Background(), url)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.Status)
}

func TestRandomUserAgent(t *testing.T) {
	a, b := RandomUserAgent(), RandomUserAgent()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, New(nil, "").UserAgent)
}
