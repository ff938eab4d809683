package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultTokenType is stored when the backend omits a token type.
const DefaultTokenType = "bearer"

// Credential is the token pair issued by /auth/login and /auth/refresh.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// OAuth2Token converts the credential for use with oauth2 helpers such as
// (*oauth2.Token).SetAuthHeader. The expiry is unknown to the client and left zero.
func (c Credential) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
	}
}

// CredentialFromOAuth2 converts an oauth2 token into a Credential.
func CredentialFromOAuth2(tok *oauth2.Token) Credential {
	return Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
}

// Store is the single source of truth for the current credential.
// Reads always hit the backend, so they observe the latest write.
type Store struct {
	backend Backend
	writeMu sync.Mutex
}

// NewStore creates a Store on top of backend.
func NewStore(backend Backend) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("missing token backend")
	}
	return &Store{backend: backend}, nil
}

// get returns "" for a missing key.
func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// AccessToken returns the stored access token, or "" if none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" if none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// Credential returns all stored parts. Missing parts are empty.
func (s *Store) Credential(ctx context.Context) (Credential, error) {
	var cred Credential
	var err error
	if cred.AccessToken, err = s.get(ctx, KeyAccessToken); err != nil {
		return Credential{}, err
	}
	if cred.RefreshToken, err = s.get(ctx, KeyRefreshToken); err != nil {
		return Credential{}, err
	}
	if cred.TokenType, err = s.get(ctx, KeyTokenType); err != nil {
		return Credential{}, err
	}
	return cred, nil
}

// SetTokens overwrites the persisted credential.
func (s *Store) SetTokens(ctx context.Context, cred Credential) error {
	if cred.AccessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}
	tokenType := strings.TrimSpace(cred.TokenType)
	if tokenType == "" {
		tokenType = DefaultTokenType
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.Set(ctx, KeyAccessToken, cred.AccessToken); err != nil {
		return fmt.Errorf("writing %s: %w", KeyAccessToken, err)
	}
	// A login without a refresh token must not leave a stale one behind.
	if cred.RefreshToken == "" {
		if err := s.backend.Delete(ctx, KeyRefreshToken); err != nil {
			return fmt.Errorf("deleting %s: %w", KeyRefreshToken, err)
		}
	} else if err := s.backend.Set(ctx, KeyRefreshToken, cred.RefreshToken); err != nil {
		return fmt.Errorf("writing %s: %w", KeyRefreshToken, err)
	}
	if err := s.backend.Set(ctx, KeyTokenType, tokenType); err != nil {
		return fmt.Errorf("writing %s: %w", KeyTokenType, err)
	}
	return nil
}

// ClearTokens removes the persisted credential. Calling it twice is fine.
// Every key is attempted even if one fails.
func (s *Store) ClearTokens(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var errs []error
	for _, key := range Keys {
		if err := s.backend.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// IsAuthenticated reports whether an access token is present. It does not check
// expiry or signature.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.AccessToken(ctx)
	return err == nil && token != ""
}
