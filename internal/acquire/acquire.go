// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads remote documents so they can be parsed and
// stored like local files.
package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pdiddy/pitagorin/internal/httputil"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// MaxBytes caps the size of a downloaded document.
const MaxBytes = 32 << 20

// userAgent identifies pitagorin to remote servers.
const userAgent = "pitagorin (+https://github.com/pdiddy/pitagorin)"

// Document is a downloaded file.
type Document struct {
	// Name is the last path segment of the URL, used as the fragment source.
	Name string

	// Ext is the file extension without the dot, taken from the URL path
	// or, failing that, the response content type.
	Ext string

	Data []byte
}

// contentTypes maps media types to the extension the parser expects.
var contentTypes = map[string]string{
	"application/pdf":    "pdf",
	"text/plain":         "txt",
	"text/markdown":      "md",
	"text/csv":           "csv",
	"application/json":   "json",
	"application/yaml":   "yaml",
	"application/x-yaml": "yaml",
	"text/yaml":          "yaml",
	"application/xml":    "xml",
	"text/xml":           "xml",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// NewClient returns an HTTP client suited to document downloads.
func NewClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// Download fetches rawURL, retrying transient failures up to retries times.
// The client handles redirect following.
func Download(ctx context.Context, client *http.Client, rawURL string, retries int) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !IsURL(rawURL) {
		return Document{}, fmt.Errorf("invalid URL %q: %w", rawURL, types.ErrValidation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, retries)
	if err != nil {
		return Document{}, fmt.Errorf("downloading %s: %w: %w", rawURL, types.ErrExternalSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("HTTP %d from %s: %w", resp.StatusCode, rawURL, types.ErrExternalSource)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w: %w", rawURL, types.ErrExternalSource, err)
	}
	if len(data) > MaxBytes {
		return Document{}, fmt.Errorf("%s exceeds %d bytes: %w", rawURL, MaxBytes, types.ErrExternalSource)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = u.Host
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		ext = extFromContentType(resp.Header.Get("Content-Type"))
	}
	if ext == "" {
		return Document{}, fmt.Errorf("cannot tell the file type of %s: %w", rawURL, types.ErrValidation)
	}
	return Document{Name: name, Ext: strings.ToLower(ext), Data: data}, nil
}

func extFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	if ext, ok := contentTypes[mt]; ok {
		return ext
	}
	if strings.HasPrefix(mt, "text/") {
		return "txt"
	}
	return ""
}
