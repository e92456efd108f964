package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/middleware"
)

// TokenProvider supplies the bearer credential; "" sends no Authorization
// header. *session.Gate implements it.
type TokenProvider interface {
	Token() string
}

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client

	tokens         TokenProvider
	onUnauthorized func(context.Context)
	maxTries       uint
	newBackOff     func() backoff.BackOff
	logger         *zap.Logger
}

type Option func(*Client)

func WithTokens(p TokenProvider) Option {
	return func(c *Client) { c.tokens = p }
}

// WithUnauthorizedHook runs fn after any 401, before the error is returned.
func WithUnauthorizedHook(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRetries sets how many attempts a GET gets. POSTs, PUTs and DELETEs are
// always sent once.
func WithRetries(maxTries int, newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		if maxTries > 0 {
			c.maxTries = uint(maxTries)
		}
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(name string, baseURL string, httpClient *http.Client, opts ...Option) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	// paths are resolved relative to the base, so an API mounted under a
	// prefix keeps it
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c := &Client{
		Name:     name,
		BaseURL:  u,
		HTTP:     httpClient,
		maxTries: 1,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewHTTPClient returns an *http.Client whose transport records a client
// span per request.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, headers http.Header) (*http.Response, error) {
	rel := &url.URL{Path: strings.TrimPrefix(path, "/"), RawQuery: rawQuery}
	u := c.BaseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vv := range headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil && req.Header.Get("Authorization") == "" {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	// Ensure correlation id propagated to the API
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

// getJSON decodes the body of a GET into out, retrying transport errors and
// 5xx answers.
func (c *Client) getJSON(ctx context.Context, path, rawQuery string, out any) error {
	op := func() (struct{}, error) {
		err := c.roundTrip(ctx, http.MethodGet, path, rawQuery, nil, nil, out)
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		if err != nil {
			c.logger.Debug("retrying request",
				zap.String("client", c.Name),
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return struct{}{}, err
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	// Retry gives up with the bare context error when ctx ends between tries.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if !IsNetwork(err) {
			return &NetworkError{Op: http.MethodGet + " " + path, Err: err}
		}
	}
	return err
}

// sendJSON sends in as a JSON body exactly once.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.Name, err)
		}
		body = raw
	}
	h := http.Header{}
	if body != nil {
		h.Set("Content-Type", "application/json")
	}
	return c.roundTrip(ctx, method, path, "", body, h, out)
}

// sendForm posts an application/x-www-form-urlencoded body exactly once.
func (c *Client) sendForm(ctx context.Context, path string, form url.Values, out any) error {
	h := http.Header{}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.roundTrip(ctx, http.MethodPost, path, "", []byte(form.Encode()), h, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path, rawQuery string, body []byte, headers http.Header, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	resp, err := c.Do(ctx, method, path, rawQuery, rdr, headers)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return ErrAuthExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &NetworkError{Op: method + " " + path, Err: err}
		}
		return fmt.Errorf("decode %s response: %w", c.Name, err)
	}
	return nil
}

func retryable(err error) bool {
	if IsNetwork(err) {
		return true
	}
	return statusOf(err) >= 500
}

// readDetail pulls a human readable message out of an error body. FastAPI
// sends {"detail": "..."}; validation errors send a list instead.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 {
		msgs := make([]string, 0, len(list))
		for _, m := range list {
			msgs = append(msgs, m.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(body.Detail)
}
