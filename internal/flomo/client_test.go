package flomo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordedRequest struct {
	method      string
	contentType string
	body        []byte
}

type webhook struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func (w *webhook) Requests() []recordedRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]recordedRequest(nil), w.requests...)
}

func newWebhook(t *testing.T, status int, response string) *webhook {
	t.Helper()
	hook := &webhook{}
	hook.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		hook.mu.Lock()
		hook.requests = append(hook.requests, recordedRequest{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		hook.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(hook.Close)
	return hook
}

func TestWriteNote_PostsContent(t *testing.T) {
	contents := []string{"hi", "# Title\n\n- item with \"quotes\"", "多语言 #tag"}
	for _, content := range contents {
		srv := newWebhook(t, http.StatusOK, `{"code":0,"message":"ok"}`)
		client := NewClient(Config{APIURL: srv.URL, Timeout: time.Second})

		_, err := client.WriteNote(context.Background(), content)
		require.NoError(t, err)

		requests := srv.Requests()
		require.Len(t, requests, 1)
		got := requests[0]
		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "application/json", got.contentType)
		assert.Equal(t, content, gjson.GetBytes(got.body, "content").String())
		assert.Len(t, gjson.ParseBytes(got.body).Map(), 1, "body must only carry content")
	}
}

func TestWriteNote_ReturnsCompactResponse(t *testing.T) {
	srv := newWebhook(t, http.StatusOK, `{"id": 1, "content": "hi"}`)
	client := NewClient(Config{APIURL: srv.URL})

	result, err := client.WriteNote(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"content":"hi"}`, string(result))
}

func TestWriteNote_NonSuccessStatus(t *testing.T) {
	srv := newWebhook(t, http.StatusInternalServerError, `"server error"`)
	client := NewClient(Config{APIURL: srv.URL})

	_, err := client.WriteNote(context.Background(), "hi")
	var remoteErr *RemoteRequestError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.Equal(t, `"server error"`, remoteErr.Body)
	assert.Contains(t, err.Error(), "500")
}

func TestWriteNote_InvalidJSON(t *testing.T) {
	for _, body := range []string{"", "<html>oops</html>", `{"id":`} {
		srv := newWebhook(t, http.StatusOK, body)
		client := NewClient(Config{APIURL: srv.URL})

		_, err := client.WriteNote(context.Background(), "hi")
		var parseErr *ResponseParseError
		require.ErrorAs(t, err, &parseErr, "body %q", body)
		assert.Equal(t, body, parseErr.Body)
	}
}

func TestWriteNote_OversizedResponse(t *testing.T) {
	huge := `"` + strings.Repeat("a", maxResponseBytes) + `"`

	t.Run("success status", func(t *testing.T) {
		srv := newWebhook(t, http.StatusOK, huge)
		client := NewClient(Config{APIURL: srv.URL})

		_, err := client.WriteNote(context.Background(), "hi")
		var parseErr *ResponseParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Len(t, parseErr.Body, maxResponseBytes)
		assert.Less(t, len(err.Error()), 512)
	})

	t.Run("error status", func(t *testing.T) {
		srv := newWebhook(t, http.StatusBadGateway, huge)
		client := NewClient(Config{APIURL: srv.URL})

		_, err := client.WriteNote(context.Background(), "hi")
		var remoteErr *RemoteRequestError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
		assert.Len(t, remoteErr.Body, maxResponseBytes)
	})
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("记", 100) // 3 bytes per rune
	got := truncate(s, 200)

	assert.True(t, utf8.ValidString(got), got)
	assert.Equal(t, strings.Repeat("记", 66)+"...", got)
	assert.Equal(t, "short", truncate("short", 200))

	parseErr := &ResponseParseError{Body: s}
	assert.NotContains(t, parseErr.Error(), `\x`)
}

func TestWriteNote_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{APIURL: url})
	_, err := client.WriteNote(context.Background(), "hi")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestWriteNote_InvalidURL(t *testing.T) {
	client := NewClient(Config{APIURL: "://not a url"})
	_, err := client.WriteNote(context.Background(), "hi")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestWriteNote_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	// Cleanups run last-in first-out: the handler is released before Close waits on it.
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(Config{APIURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.WriteNote(context.Background(), "hi")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed out after 50ms")
}

func TestWriteNote_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("unexpected request")
	})}

	for _, url := range []string{"", "   "} {
		client := NewClient(Config{APIURL: url}, WithHTTPClient(hc))
		_, err := client.WriteNote(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrConfigurationMissing)
	}
	assert.Zero(t, calls.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
