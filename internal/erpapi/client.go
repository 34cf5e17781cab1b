// Package erpapi is the REST client for the ERP backend.
//
// Every endpoint answers with an Envelope {success, message, data}. A non-2xx
// status or success=false is returned as *APIError; success=false also
// matches ErrUnsuccessful. Requests carry the bearer token and a fresh
// X-Request-ID.
package erpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/five82/erpdesk/internal/menu"
)

// MenuFetcher loads the navigation tree.
type MenuFetcher interface {
	FetchMenus(ctx context.Context) ([]menu.Item, error)
}

// PermissionFetcher loads the button permissions of one program.
type PermissionFetcher interface {
	FetchButtonPermissions(ctx context.Context, programNo string) ([]ButtonPermission, error)
}

// Ensure Client implements both fetchers at compile time.
var (
	_ MenuFetcher       = (*Client)(nil)
	_ PermissionFetcher = (*Client)(nil)
)

const (
	defaultAPIBase   = "http://127.0.0.1:8080"
	defaultUserAgent = "erpdesk/0.1"
	defaultTimeout   = 10 * time.Second

	menusPath       = "/api/system/menus"
	menuButtonsPath = "/api/system/menu-buttons"
)

// Client talks to the ERP backend.
type Client struct {
	rc      *resty.Client
	baseURL *url.URL
}

// Option customises a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		if t := strings.TrimSpace(token); t != "" {
			c.rc.SetAuthToken(t)
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rc.SetTimeout(d)
		}
	}
}

// NewClient builds a Client for apiBase, which may omit the scheme.
func NewClient(apiBase string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	rc := resty.New().
		SetBaseURL(base.String()).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", defaultUserAgent)
	c := &Client{rc: rc, baseURL: base}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchMenus retrieves the menu tree visible to the signed-in user.
func (c *Client) FetchMenus(ctx context.Context) ([]menu.Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	raw, err := c.do(ctx, http.MethodGet, menusPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[menu.Item](raw)
}

// FetchButtonPermissions retrieves the UI-action permissions of programNo.
func (c *Client) FetchButtonPermissions(ctx context.Context, programNo string) ([]ButtonPermission, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	programNo = strings.TrimSpace(programNo)
	if programNo == "" {
		return nil, fmt.Errorf("program number required")
	}
	query := url.Values{}
	query.Set("programNo", programNo)
	raw, err := c.do(ctx, http.MethodGet, menuButtonsPath, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[ButtonPermission](raw)
}

// Search posts req to a screen's search endpoint and decodes the rows.
func Search[Row any](ctx context.Context, c *Client, endpoint string, req any) ([]Row, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint required")
	}
	raw, err := c.do(ctx, http.MethodPost, endpoint, nil, req)
	if err != nil {
		return nil, err
	}
	return decodeList[Row](raw)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	req := c.rc.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, &APIError{Path: path, StatusCode: resp.StatusCode(), Message: envelopeMessage(resp.Body())}
	}

	var env Envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Path: path, StatusCode: resp.StatusCode(), Message: env.Message, Unsuccessful: true}
	}
	return env.Data, nil
}

// envelopeMessage pulls a message out of an error body when it is an envelope.
func envelopeMessage(body []byte) string {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", apiBase)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
