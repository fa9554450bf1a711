package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"

	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
)

const (
	ListPath   = "/api/actions/list"
	UpsertPath = "/api/actions/upsert"

	maxErrorBodyLen = 512
	defaultTimeout  = 30 * time.Second
)

// Client talks to the actions catalog API
type Client struct {
	baseURL     *url.URL
	functionKey string
	httpClient  *http.Client
	timeout     time.Duration
}

// Option is a functional option for Client
type Option func(*Client)

// WithFunctionKey sets the API key sent with every request
func WithFunctionKey(key string) Option {
	return func(c *Client) {
		c.functionKey = key
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of each request. It is applied to a copy of
// the HTTP client, so a shared client is never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a new catalog API client
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	if apiURL == "" {
		return nil, goerr.New("API URL is required")
	}

	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid API URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("API URL must be http or https", goerr.V("scheme", u.Scheme))
	}

	c := &Client{
		baseURL: u,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	var httpClient http.Client
	if c.httpClient != nil {
		httpClient = *c.httpClient
	}
	if c.timeout > 0 {
		httpClient.Timeout = c.timeout
	}
	c.httpClient = &httpClient

	return c, nil
}

// ListActions returns every action in the catalog
func (c *Client) ListActions(ctx context.Context) ([]*model.ActionEntry, error) {
	body, err := c.do(ctx, http.MethodGet, ListPath, nil)
	if err != nil {
		return nil, err
	}

	var actions []*model.ActionEntry
	if err := json.Unmarshal(body, &actions); err != nil {
		return nil, goerr.Wrap(err, "failed to decode actions list")
	}

	return actions, nil
}

// UpsertAction creates or updates action in the catalog
func (c *Client) UpsertAction(ctx context.Context, action *model.ActionEntry) (*model.UpsertResult, error) {
	payload, err := json.Marshal(action)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode action", goerr.V("action", action.Key()))
	}

	body, err := c.do(ctx, http.MethodPost, UpsertPath, payload)
	if err != nil {
		return nil, err
	}

	var result model.UpsertResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode upsert response", goerr.V("action", action.Key()))
	}

	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path).String()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("endpoint", endpoint))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.functionKey != "" {
		req.Header.Set(types.FunctionKeyHeader, c.functionKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("method", method), goerr.V("endpoint", endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body", goerr.V("endpoint", endpoint))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, body)
	}

	return body, nil
}

// newAPIError builds an APIError from a failed response. The body is
// expected to be {"error"|"message": ..., "code": ..., "details": ...} but
// anything else is accepted.
func newAPIError(resp *http.Response, body []byte) *model.APIError {
	apiErr := &model.APIError{
		StatusCode:    resp.StatusCode,
		CorrelationID: resp.Header.Get(types.CorrelationIDHeader),
	}

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if parsed.IsObject() {
			apiErr.Message = firstString(parsed, "message", "error")
			apiErr.Code = parsed.Get("code").String()
			if id := parsed.Get("correlationId").String(); id != "" {
				apiErr.CorrelationID = id
			}
			if details := parsed.Get("details"); details.Exists() {
				apiErr.Details = details.Value()
			}
		}
	}

	if apiErr.Message == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBodyLen {
			msg = msg[:maxErrorBodyLen] + "..."
		}
		apiErr.Message = msg
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}

	return apiErr
}

func firstString(res gjson.Result, fields ...string) string {
	for _, field := range fields {
		if v := res.Get(field); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
