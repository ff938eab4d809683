package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/suresoft/ams-client/internal/claims"
	"github.com/suresoft/ams-client/internal/tokenstore"
)

// ErrNotLoggedIn is returned when no access token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// StoreTokenSource exposes the stored credential as an oauth2.TokenSource.
// It never refreshes; the expiry is taken from the access token's exp claim so
// callers can tell whether the token is still usable.
type StoreTokenSource struct {
	store *tokenstore.Store
}

// Compile-time check to ensure StoreTokenSource implements oauth2.TokenSource
var _ oauth2.TokenSource = (*StoreTokenSource)(nil)

// NewStoreTokenSource creates a StoreTokenSource reading from store.
func NewStoreTokenSource(store *tokenstore.Store) (*StoreTokenSource, error) {
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}
	return &StoreTokenSource{store: store}, nil
}

// Token returns the stored credential.
func (s *StoreTokenSource) Token() (*oauth2.Token, error) {
	// oauth2.TokenSource.Token() has no context parameter (legacy interface limitation)
	return s.TokenContext(context.Background())
}

// TokenContext is Token with a caller-supplied context.
func (s *StoreTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	cred, err := s.store.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading credential: %w", err)
	}
	if cred.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}

	tok := cred.OAuth2Token()
	// Opaque tokens have no readable expiry and are treated as valid.
	if c, err := claims.Inspect(cred.AccessToken); err == nil && c.ExpiresAt != nil {
		tok.Expiry = c.ExpiresAt.Time
	}
	return tok, nil
}

// FreshToken returns a usable access token. An expired token is renewed by
// making an authenticated call, which goes through the client's refresh cycle.
func (a *App) FreshToken(ctx context.Context) (*oauth2.Token, error) {
	ts, err := NewStoreTokenSource(a.store)
	if err != nil {
		return nil, err
	}

	tok, err := ts.TokenContext(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Valid() {
		return tok, nil
	}

	if _, err := a.client.Me(ctx); err != nil {
		return nil, fmt.Errorf("renewing access token: %w", err)
	}
	return ts.TokenContext(ctx)
}
