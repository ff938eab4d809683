package tokensource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/suresoft/ams-client/internal/tokenstore"
)

// DefaultTimeout bounds a refresh exchange. oauth2 refreshes are not cancellable
// by the waiting requests, so the HTTP client timeout is the only bound.
const DefaultTimeout = 30 * time.Second

// ErrNoRefreshToken is returned when no refresh token is available to exchange.
var ErrNoRefreshToken = errors.New("no refresh token")

// Option configures a Refresher.
type Option func(*config)

// config holds configuration for NewRefresher.
type config struct {
	baseTransport http.RoundTripper
	timeout       time.Duration
}

// WithTransport sets a custom base transport for refresh requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *config) {
		c.baseTransport = transport
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// Refresher performs the refresh-token exchange against the AMS backend.
type Refresher struct {
	oauth2Config *oauth2.Config
	httpClient   *http.Client
}

// NewRefresher creates a Refresher posting to tokenURL.
func NewRefresher(tokenURL string, opts ...Option) *Refresher {
	cfg := &config{
		baseTransport: http.DefaultTransport,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Refresher{
		oauth2Config: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenURL,
				// Avoids oauth2's auth-style probing; AMS has no client credentials.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{
			Timeout: cfg.timeout,
			Transport: &jsonRefreshTransport{
				base: cfg.baseTransport,
			},
		},
	}
}

// Refresh exchanges refreshToken for a new credential. An empty refresh token fails
// with ErrNoRefreshToken without any network call. If the backend omits a new
// refresh token, the old one is kept.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (tokenstore.Credential, error) {
	if refreshToken == "" {
		return tokenstore.Credential{}, ErrNoRefreshToken
	}

	// oauth2 picks up the custom HTTP client from the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	// No access token means the token is invalid, so Token() always refreshes.
	tok, err := r.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return tokenstore.Credential{}, fmt.Errorf("refreshing token: %w", err)
	}
	if tok.AccessToken == "" {
		return tokenstore.Credential{}, fmt.Errorf("refresh response has no access token")
	}

	cred := tokenstore.CredentialFromOAuth2(tok)
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

// StatusCode returns the HTTP status of a failed refresh, or 0 when the failure
// happened before a response arrived.
func StatusCode(err error) int {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return retrieveErr.Response.StatusCode
	}
	return 0
}

// jsonRefreshTransport converts oauth2's form-encoded refresh requests to the JSON
// format required by the AMS refresh endpoint.
// The oauth2 package guarantees this transport only receives token endpoint requests.
type jsonRefreshTransport struct {
	base http.RoundTripper
}

// Compile-time check that jsonRefreshTransport implements http.RoundTripper.
var _ http.RoundTripper = (*jsonRefreshTransport)(nil)

// RoundTrip intercepts refresh requests and converts them from form-encoded to JSON.
func (t *jsonRefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The body is consumed entirely and replaced in the cloned request.
	defer func() { _ = req.Body.Close() }()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	formData, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing form data: %w", err)
	}

	jsonData := make(map[string]string, len(formData))
	for key, values := range formData {
		jsonData[key] = values[0] // OAuth2 defines single-value parameters
	}

	jsonBody, err := json.Marshal(jsonData)
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON request: %w", err)
	}

	newReq := req.Clone(req.Context())
	newReq.Body = io.NopCloser(bytes.NewReader(jsonBody))
	newReq.ContentLength = int64(len(jsonBody))
	newReq.Header.Set("Content-Type", "application/json")
	newReq.Header.Set("Accept", "application/json")

	return t.base.RoundTrip(newReq)
}
