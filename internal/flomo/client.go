package flomo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/roivaz/flomo-mcp/internal/logging"
)

// maxResponseBytes caps how much of a webhook answer is read.
const maxResponseBytes = 1 << 20

// Note is the payload accepted by a flomo incoming webhook.
type Note struct {
	Content string `json:"content"`
}

// Client posts notes to a single configured webhook. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  logging.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The configured timeout
// is still applied per request through the context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  logging.New(logr.Discard()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// WriteNote submits content to the webhook and returns the decoded JSON
// answer, compacted, exactly as the remote sent it.
func (c *Client) WriteNote(ctx context.Context, content string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrConfigurationMissing
	}

	payload, err := json.Marshal(Note{Content: content})
	if err != nil {
		return nil, fmt.Errorf("encode note: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.log.Debug("posting note", "bytes", len(content))

	resp, err := c.http.Do(req)
	if err != nil {
		annotated := c.annotateError(err)
		c.log.Error(annotated, "flomo request failed", "elapsed", time.Since(start).String())
		return nil, &NetworkError{Err: annotated}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response: %w", c.annotateError(err))}
	}
	oversized := len(body) > maxResponseBytes
	if oversized {
		body = body[:maxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Info("flomo rejected note", "status", resp.StatusCode, "elapsed", time.Since(start).String())
		return nil, &RemoteRequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if oversized || !gjson.ValidBytes(body) {
		return nil, &ResponseParseError{Body: string(body)}
	}

	c.log.Debug("note written",
		"status", resp.StatusCode,
		"message", gjson.GetBytes(body, "message").String(),
		"elapsed", time.Since(start).String(),
	)
	return json.RawMessage(pretty.Ugly(body)), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) annotateError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("request timed out after %s: %w", c.cfg.Timeout, err)
	}
	return err
}
