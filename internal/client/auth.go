package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/suresoft/ams-client/internal/apierr"
	"github.com/suresoft/ams-client/internal/models"
	"github.com/suresoft/ams-client/internal/tokensource"
	"github.com/suresoft/ams-client/internal/tokenstore"
)

// Login authenticates with email and password and stores the issued tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.validate.StructCtx(ctx, req); err != nil {
		return nil, &apierr.Error{Kind: apierr.KindUnknown, Detail: "invalid login request", Err: err}
	}

	resp, err := Execute[models.LoginResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}

	cred := tokenstore.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
	}
	if err := c.store.SetTokens(ctx, cred); err != nil {
		return nil, &apierr.Error{Kind: apierr.KindUnknown, Detail: "storing tokens", Err: err}
	}

	slog.InfoContext(ctx, "logged in", "email", email)
	return &resp, nil
}

// Logout notifies the backend and clears the stored credential. The backend call
// is best effort; local tokens are cleared regardless.
func (c *Client) Logout(ctx context.Context) error {
	if c.store.IsAuthenticated(ctx) {
		if _, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathLogout}); err != nil {
			slog.WarnContext(ctx, "logout request failed", "error", err)
		}
	}

	if err := c.store.ClearTokens(ctx); err != nil {
		return &apierr.Error{Kind: apierr.KindUnknown, Detail: "clearing tokens", Err: err}
	}
	slog.InfoContext(ctx, "logged out")
	return nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	user, err := Execute[models.User](ctx, c, Request{Method: http.MethodGet, Path: PathMe})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsAuthenticated reports whether an access token is stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.store.IsAuthenticated(ctx)
}

// refreshTokens is the coordinator's refresh function. On any failure the session
// ends: tokens are cleared and the user is asked to log in again.
func (c *Client) refreshTokens(ctx context.Context) (string, error) {
	refreshToken, err := c.store.RefreshToken(ctx)
	if err != nil {
		c.endSession(ctx, "refresh token unreadable")
		return "", fmt.Errorf("reading refresh token: %w", err)
	}

	cred, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		slog.WarnContext(ctx, "refresh exchange failed", "status", tokensource.StatusCode(err), "error", err)
		c.endSession(ctx, "session expired")
		return "", err
	}

	if err := c.store.SetTokens(ctx, cred); err != nil {
		c.endSession(ctx, "refreshed tokens could not be stored")
		return "", fmt.Errorf("storing refreshed tokens: %w", err)
	}

	slog.InfoContext(ctx, "access token refreshed")
	return cred.AccessToken, nil
}

// endSession clears the stored credential and asks the user to log in again.
func (c *Client) endSession(ctx context.Context, reason string) {
	if err := c.store.ClearTokens(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear tokens", "error", err)
	}
	c.notifier.LoginRequired(ctx, reason)
}
