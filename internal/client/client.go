// Package client is the authenticated HTTP client for the AMS REST API.
//
// Every call attaches the stored access token as a bearer credential. A 401 from
// a regular endpoint triggers exactly one refresh-and-retry cycle, coordinated so
// that concurrent 401s share a single refresh. All failures are returned as
// *apierr.Error; raw transport errors never escape.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/suresoft/ams-client/internal/notify"
	"github.com/suresoft/ams-client/internal/refresh"
	"github.com/suresoft/ams-client/internal/tokensource"
	"github.com/suresoft/ams-client/internal/tokenstore"
)

// Auth endpoints, relative to the API base URL.
const (
	PathLogin   = "/auth/login"
	PathRefresh = "/auth/refresh"
	PathLogout  = "/auth/logout"
	PathMe      = "/auth/me"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "ams-client"
)

// Option configures a Client.
type Option func(*config)

type config struct {
	transport http.RoundTripper
	timeout   time.Duration
	notifier  notify.Notifier
	userAgent string
}

// WithTransport sets the base transport for API and refresh requests.
// Defaults to a pooled go-cleanhttp transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *config) {
		c.transport = transport
	}
}

// WithTimeout bounds every API request, including refresh exchanges.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithNotifier sets the receiver of user-facing side effects.
func WithNotifier(n notify.Notifier) Option {
	return func(c *config) {
		c.notifier = n
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// Client executes AMS API calls with automatic token refresh.
// It is safe for concurrent use.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	store       *tokenstore.Store
	refresher   *tokensource.Refresher
	coordinator *refresh.Coordinator
	notifier    notify.Notifier
	userAgent   string
	validate    *validator.Validate
}

// New creates a Client for the API rooted at baseURL (e.g. https://ams.example.com/api/v1).
func New(baseURL string, store *tokenstore.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	cfg := &config{
		transport: cleanhttp.DefaultPooledTransport(),
		timeout:   DefaultTimeout,
		notifier:  notify.Discard,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: cfg.transport,
			Timeout:   cfg.timeout,
		},
		store:     store,
		notifier:  cfg.notifier,
		userAgent: cfg.userAgent,
		validate:  validator.New(),
	}

	c.refresher = tokensource.NewRefresher(
		c.resolve(PathRefresh, nil).String(),
		tokensource.WithTransport(cfg.transport),
		tokensource.WithTimeout(cfg.timeout),
	)
	c.coordinator = refresh.New(c.refreshTokens, c.store.AccessToken)

	return c, nil
}

// Store returns the token store backing the client.
func (c *Client) Store() *tokenstore.Store {
	return c.store
}

// BaseURL returns a copy of the API base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// RefreshInProgress reports whether a token refresh is currently running.
func (c *Client) RefreshInProgress() bool {
	return c.coordinator.InProgress()
}

// resolve joins an API-relative path (which may carry its own query) onto the base URL.
func (c *Client) resolve(path string, query url.Values) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}

	u := c.baseURL.JoinPath(ref.Path)
	q := ref.Query()
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u
}
