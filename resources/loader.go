package resources

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Loader fetches the encoded bytes behind an image source.
type Loader interface {
	Load(ctx context.Context, src string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, src string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, src string) ([]byte, error) { return f(ctx, src) }

// ErrBadDataURL is returned for data: sources that cannot be decoded.
var ErrBadDataURL = errors.New("malformed data URL")

// maxDownload caps the body read from an HTTP source.
const maxDownload = 64 << 20

// FileLoader reads data: URLs, http(s) URLs and local files. Relative file
// paths are taken from Root when it is set.
type FileLoader struct {
	Root   string
	Client *http.Client
}

// NewFileLoader returns a loader rooted at dir with a 30 second HTTP timeout.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Root: dir, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (l *FileLoader) Load(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := src
	if l.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

func (l *FileLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}

// decodeDataURL returns the payload of data:[<mediatype>][;base64],<data>.
func decodeDataURL(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, ErrBadDataURL
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return []byte(s), nil
}
