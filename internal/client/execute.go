package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/oauth2"

	"github.com/suresoft/ams-client/internal/apierr"
	"github.com/suresoft/ams-client/internal/notify"
)

// maxResponseSize caps how much of a response body is buffered.
const maxResponseSize = 32 << 20

// Request describes one logical API call.
type Request struct {
	Method string
	// Path is relative to the base URL and may include a query string.
	Path  string
	Query url.Values
	// Body is JSON-encoded when non-nil. A json.RawMessage is sent as is.
	Body   any
	Header http.Header
}

// Response is a successful (2xx) API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &apierr.Error{Kind: apierr.KindUnknown, Status: r.StatusCode, Detail: "invalid response body", Err: err}
	}
	return nil
}

// Execute performs req and decodes the JSON response into T.
func Execute[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// Do performs req with the current access token. On a 401 from a regular endpoint
// it waits for a refreshed token and retries once.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindUnknown, Detail: "encoding request body", Err: err}
	}

	token, err := c.store.AccessToken(ctx)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindUnknown, Detail: "reading access token", Err: err}
	}

	resp, apiErr := c.roundTrip(ctx, req, body, token)
	if apiErr == nil {
		return resp, nil
	}
	if apiErr.Kind != apierr.KindAuth {
		c.raise(ctx, apiErr)
		return nil, apiErr
	}

	if isAuthEndpoint(req.Path) {
		// Never refresh on behalf of the auth endpoints themselves.
		c.endSession(ctx, "authentication rejected")
		return nil, apiErr
	}

	retryToken, err := c.coordinator.Await(ctx, token)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "retrying request with refreshed token", "method", req.Method, "path", req.Path)
	resp, apiErr = c.roundTrip(ctx, req, body, retryToken)
	if apiErr == nil {
		return resp, nil
	}
	if apiErr.Kind == apierr.KindAuth {
		c.endSession(ctx, "refreshed credential rejected")
		return nil, apierr.SessionExpired(apiErr)
	}
	c.raise(ctx, apiErr)
	return nil, apiErr
}

// roundTrip performs one HTTP exchange and classifies the outcome.
func (c *Client) roundTrip(ctx context.Context, req Request, body []byte, token string) (*Response, *apierr.Error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path, req.Query).String(), bodyReader)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindUnknown, Detail: "building request", Err: err}
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	} else {
		httpReq.Header.Del("Authorization")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, apierr.FromTransport(fmt.Errorf("reading response body: %w", err))
	}

	if apiErr := apierr.FromStatus(httpResp.StatusCode, respBody); apiErr != nil {
		slog.DebugContext(ctx, "api request failed",
			"method", req.Method, "path", req.Path, "status", httpResp.StatusCode, "kind", apiErr.Kind.String())
		return nil, apiErr
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// raise surfaces the user-facing notification for errors that carry one.
func (c *Client) raise(ctx context.Context, apiErr *apierr.Error) {
	if !apierr.Notifies(apiErr.Kind) {
		return
	}
	switch apiErr.Kind {
	case apierr.KindForbidden:
		msg := "You do not have permission to perform this action"
		if apiErr.Detail != "" {
			msg += ": " + apiErr.Detail
		}
		c.notifier.Notify(ctx, notify.Notification{Level: notify.LevelWarning, Message: msg, Status: apiErr.Status})
	case apierr.KindServer:
		c.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelError,
			Message: "Server error, please try again later",
			Status:  apiErr.Status,
		})
	}
}

// isAuthEndpoint reports whether p targets the login or refresh endpoint.
func isAuthEndpoint(p string) bool {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = path.Clean("/" + p)
	return p == PathLogin || p == PathRefresh
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(v)
	}
}
