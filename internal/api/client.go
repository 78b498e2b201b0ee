package api

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
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/sgmi/proddash/internal/engine/cache"
	"github.com/sgmi/proddash/internal/logging"
)

// Client defaults.
const (
	DefaultTimeout = 15 * time.Second

	// VersionHeader carries the backend API version.
	VersionHeader = "X-API-Version"
	// SupportedVersions is the semver constraint the client is written against.
	SupportedVersions = "^1"

	maxErrorBody = 64 << 10
)

// TokenSource supplies the bearer token for requests. An empty token sends
// no Authorization header.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// AccessToken implements TokenSource.
func (t StaticToken) AccessToken() string { return string(t) }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithCache serves reads from store. subject separates cached responses of
// different users.
func WithCache(store *cache.FileStore, subject string) Option {
	return func(c *Client) {
		c.cache = store
		c.subject = subject
	}
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = logging.ComponentLogger(l, "api") }
}

// Client talks to the production backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	cache   *cache.FileStore
	subject string
	logger  zerolog.Logger

	versionOnce sync.Once
	constraint  *semver.Constraints
}

// New returns a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		http:       &http.Client{Timeout: DefaultTimeout},
		tokens:     StaticToken(""),
		logger:     zerolog.Nop(),
		constraint: constraint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// getData GETs path and decodes the envelope's data into out, going
// through the response cache when one is configured.
func (c *Client) getData(ctx context.Context, path string, query url.Values, out any) error {
	key := ""
	if c.cache.Enabled() {
		key = cache.GenerateKey(cache.KeyParams{
			Endpoint: c.baseURL + path,
			Query:    flatten(query),
			Subject:  c.subject,
		})
		if err := c.cache.Load(key, out); err == nil {
			return nil
		}
	}

	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	data, err := unwrap(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if key != "" {
		if err := c.cache.Set(key, path, json.RawMessage(data)); err != nil {
			c.logger.Warn().Ctx(ctx).Err(err).Str("path", path).Msg("failed to cache response")
		}
	}
	return nil
}

// postData POSTs in as JSON and decodes the envelope's data into out.
func (c *Client) postData(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := unwrap(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Ctx(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")
	c.checkVersion(ctx, resp.Header.Get(VersionHeader))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newHTTPError(resp.StatusCode, raw)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// checkVersion warns once when the backend reports an unsupported version.
func (c *Client) checkVersion(ctx context.Context, header string) {
	if header == "" {
		return
	}
	c.versionOnce.Do(func() {
		v, err := semver.NewVersion(header)
		if err != nil {
			c.logger.Warn().Ctx(ctx).Str("version", header).Msg("backend sent an unparsable API version")
			return
		}
		if !c.constraint.Check(v) {
			c.logger.Warn().Ctx(ctx).
				Str("version", v.String()).
				Str("supported", SupportedVersions).
				Msg("backend API version is not supported; responses may not decode")
		}
	})
}

func newHTTPError(status int, raw []byte) *HTTPError {
	herr := &HTTPError{StatusCode: status}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		herr.ServerMessage = eb.Message
		if herr.ServerMessage == "" {
			herr.ServerMessage = eb.Error
		}
	}
	return herr
}

var errNoData = errors.New("response has no data field")

func unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, errNoData
	}
	return env.Data, nil
}

func flatten(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[k] = strings.Join(v, ",")
	}
	return out
}
