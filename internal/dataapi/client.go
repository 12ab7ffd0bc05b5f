// Package dataapi implements a client for a Movable Type style Data API whose
// operations are discovered at runtime from the service's endpoint catalog.
package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// DefaultVersion is the API version used when none is configured.
	DefaultVersion = 3
	// DefaultClientID identifies this application to the authenticate endpoint.
	DefaultClientID = "mtcli"

	// OperationAuthenticate is the operation that issues access tokens.
	OperationAuthenticate = "authenticate"
	// OperationRevokeAuthentication invalidates the current session.
	OperationRevokeAuthentication = "revoke_authentication"

	// ClientIDParam is the authenticate parameter carrying the client id.
	ClientIDParam = "clientId"
	// AuthHeader carries the access token on authenticated requests.
	AuthHeader = "X-MT-Authorization"

	endpointsRoute = "/endpoints"
)

// Config holds the settings a Client is built from.
type Config struct {
	// BaseURL is the API root without the version segment.
	BaseURL string
	// ClientID is sent with authenticate requests. Defaults to DefaultClientID.
	ClientID string
	// Version is the API version. Zero means DefaultVersion.
	Version int
	// AccessToken is an already issued token, if any.
	AccessToken string
	// Endpoints seeds the catalog and skips discovery when non-empty.
	Endpoints []Endpoint
	// TLS configures the transport.
	TLS TLSOptions
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// UserAgent is sent with every request when set.
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient replaces the TLS-configured HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Client calls Data API operations by name. It is not safe for concurrent use.
type Client struct {
	baseURL     string
	clientID    string
	version     int
	accessToken string

	// catalog is nil until discovered or seeded; it is never refreshed
	// implicitly.
	catalog *Catalog

	httpClient *http.Client
	rest       *resty.Client
	log        *logrus.Entry
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	version := cfg.Version
	if version == 0 {
		version = DefaultVersion
	}
	if version < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	c := &Client{
		baseURL:     baseURL,
		clientID:    clientID,
		version:     version,
		accessToken: cfg.AccessToken,
		log:         discardLogger(),
	}
	if len(cfg.Endpoints) > 0 {
		c.catalog = NewCatalog(cfg.Endpoints)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := buildHTTPClient(cfg.TLS, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.httpClient = hc
	}

	c.rest = resty.NewWithClient(c.httpClient).
		SetLogger(c.log).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		c.rest.SetHeader("User-Agent", cfg.UserAgent)
	}

	return c, nil
}

// ParseVersion parses an API version such as "3" or "v3".
func ParseVersion(s string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "v"), "V")
	v, err := strconv.Atoi(trimmed)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return v, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Version returns the API version the client resolves endpoints for.
func (c *Client) Version() int {
	return c.version
}

// AccessToken returns the token currently held, or "" when anonymous.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// ClearAccessToken drops the held token.
func (c *Client) ClearAccessToken() {
	c.accessToken = ""
}

// Endpoints returns the loaded catalog entries, or nil if the catalog has not
// been loaded yet.
func (c *Client) Endpoints() []Endpoint {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Endpoints()
}

// Catalog returns the endpoint catalog, discovering it on first use.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	if c.catalog == nil {
		eps, err := c.ListEndpoints(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load endpoint catalog: %w", err)
		}
		c.catalog = NewCatalog(eps)
	}
	return c.catalog, nil
}

// RefreshEndpoints fetches the catalog again and replaces the cached one.
func (c *Client) RefreshEndpoints(ctx context.Context) ([]Endpoint, error) {
	eps, err := c.ListEndpoints(ctx)
	if err != nil {
		return nil, err
	}
	c.catalog = NewCatalog(eps)
	return c.catalog.Endpoints(), nil
}

// ListEndpoints fetches the endpoint catalog from the service without caching it.
func (c *Client) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url(endpointsRoute), nil)
	if err != nil {
		return nil, err
	}

	if resp.Get("error").Exists() {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
			Message:    resp.ErrorMessage(),
		}
	}

	items := resp.Get("items")
	if !items.IsArray() {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
			Err:        fmt.Errorf("%w: catalog has no items", ErrMalformedResponse),
		}
	}

	var eps []Endpoint
	if err := json.Unmarshal([]byte(items.Raw), &eps); err != nil {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
			Err:        fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}

	c.log.Debugf("Loaded %d endpoints", len(eps))
	return eps, nil
}

// Call invokes the named operation with params.
//
// Parameters consumed by the route template are substituted into the path;
// the rest become the query string for GET and DELETE or a form-encoded body
// for POST and PUT. A successful authenticate call replaces the held token.
// A 401 answer while a token was attached clears the token and is returned
// as a normal response with TokenInvalidated set.
func (c *Client) Call(ctx context.Context, operationID string, params map[string]string) (*Response, error) {
	catalog, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	ep, err := catalog.Resolve(operationID, c.version)
	if err != nil {
		return nil, err
	}

	args := make(map[string]string, len(params)+1)
	for k, v := range params {
		args[k] = v
	}
	if ep.ID == OperationAuthenticate {
		if _, ok := args[ClientIDParam]; !ok {
			args[ClientIDParam] = c.clientID
		}
	}

	path, rest, err := BuildRoute(ep.Route, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operationID, err)
	}
	target := c.url(path)

	var resp *Response
	switch verb := strings.ToUpper(ep.Verb); verb {
	case http.MethodGet, http.MethodDelete:
		resp, err = c.do(ctx, verb, AppendQuery(target, rest), nil)
	case http.MethodPost, http.MethodPut:
		resp, err = c.do(ctx, verb, target, rest)
	default:
		return nil, fmt.Errorf("%w: %q for %s", ErrUnsupportedVerb, ep.Verb, operationID)
	}
	if err != nil {
		return nil, err
	}

	if ep.ID == OperationAuthenticate {
		c.accessToken = resp.Get("accessToken").String()
		if c.accessToken != "" {
			c.log.Debug("Received access token")
		}
	}

	return resp, nil
}

// url builds the versioned URL for route.
func (c *Client) url(route string) string {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return c.baseURL + "/v" + strconv.Itoa(c.version) + route
}

// do performs one request and decodes the JSON answer.
func (c *Client) do(ctx context.Context, verb, target string, form map[string]string) (*Response, error) {
	req := c.rest.R().SetContext(ctx)

	tokenAttached := c.accessToken != ""
	if tokenAttached {
		req.SetHeader(AuthHeader, "MTAuth accessToken="+c.accessToken)
	}
	if len(form) > 0 {
		req.SetFormData(form)
	}

	c.log.Debugf("%s %s", verb, target)

	res, err := req.Execute(verb, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, verb, target, err)
	}

	resp := &Response{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}
	c.log.Debugf("Response %d (%d bytes)", resp.StatusCode, len(resp.Body))

	valid := gjson.ValidBytes(resp.Body)
	unauthorized := resp.StatusCode == http.StatusUnauthorized || (valid && resp.IsUnauthorized())

	if tokenAttached && unauthorized {
		c.log.Warn("Access token was rejected by the server")
		c.accessToken = ""
		resp.TokenInvalidated = true
	}

	if !valid {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
			Err:        ErrMalformedResponse,
		}
	}

	if resp.TokenInvalidated {
		return resp, nil
	}

	if !resp.isSuccess() {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
			Message:    resp.ErrorMessage(),
		}
	}

	return resp, nil
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
