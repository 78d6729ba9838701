// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pitagorin/internal/httputil"
	"github.com/pdiddy/pitagorin/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.md"))
	assert.True(t, IsURL("http://example.com"))
	assert.False(t, IsURL("docs/**/*.md"))
	assert.False(t, IsURL("ftp://example.com/a.txt"))
}

func TestDownloadExtFromPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "pitagorin")
		_, _ = w.Write([]byte("# Notes"))
	}))
	defer srv.Close()

	doc, err := Download(context.Background(), srv.Client(), srv.URL+"/docs/Notes.MD", 0)
	require.NoError(t, err)
	assert.Equal(t, "Notes.MD", doc.Name)
	assert.Equal(t, "md", doc.Ext)
	assert.Equal(t, "# Notes", string(doc.Data))
}

func TestDownloadExtFromContentType(t *testing.T) {
	for ct, want := range map[string]string{
		"application/pdf":          "pdf",
		"application/json; q=0.9":  "json",
		"text/html; charset=utf-8": "txt",
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", ct)
			_, _ = w.Write([]byte("x"))
		}))
		doc, err := Download(context.Background(), srv.Client(), srv.URL+"/report", 0)
		srv.Close()
		require.NoError(t, err, ct)
		assert.Equal(t, want, doc.Ext, ct)
		assert.Equal(t, "report", doc.Name)
	}
}

func TestDownloadUnknownType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0, 1})
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.Client(), srv.URL+"/blob", 0)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestDownloadRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.Client(), srv.URL+"/a.txt", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrExternalSource)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Download(context.Background(), srv.Client(), srv.URL+"/missing.txt", 0)
	assert.ErrorIs(t, err, types.ErrExternalSource)
	assert.True(t, strings.Contains(err.Error(), "HTTP 404"))
}

func TestDownloadInvalidURL(t *testing.T) {
	_, err := Download(context.Background(), nil, "notaurl", 0)
	assert.ErrorIs(t, err, types.ErrValidation)
}
