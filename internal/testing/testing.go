// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spotlist/internal/models"
)

// Handler answers one fake transport call. The returned value is marshaled to JSON and decoded into the
// caller's out parameter, the way a real response body would be.
type Handler func(desc models.RequestDescriptor) (any, error)

// FakeTransport is a test double for [services.Transport] that records every call.
type FakeTransport struct {
	mu      sync.Mutex
	handler Handler
	calls   []models.RequestDescriptor
}

func NewFakeTransport(h Handler) *FakeTransport {
	return &FakeTransport{handler: h}
}

func (f *FakeTransport) Request(ctx context.Context, desc models.RequestDescriptor, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, desc)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	resp, err := f.handler(desc)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// Calls returns a copy of the recorded requests in call order.
func (f *FakeTransport) Calls() []models.RequestDescriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RequestDescriptor(nil), f.calls...)
}

// CallCount returns the number of requests whose endpoint starts with prefix. An empty prefix counts every call.
func (f *FakeTransport) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c.Endpoint, prefix) {
			n++
		}
	}
	return n
}

// Paginate serves the page of items selected by the offset and limit query parameters of desc,
// in the shape of a Spotify paging object. defaultLimit applies when desc carries no limit.
func Paginate[T any](items []T, desc models.RequestDescriptor, defaultLimit int) map[string]any {
	offset, _ := strconv.Atoi(desc.Query[models.OffsetParam])
	limit, err := strconv.Atoi(desc.Query[models.LimitParam])
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}

	start := min(offset, len(items))
	end := min(start+limit, len(items))
	return map[string]any{
		"items":  items[start:end],
		"total":  len(items),
		"offset": offset,
		"limit":  limit,
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
