package tokenstore

import (
	"context"
	"errors"
)

// Fixed keys under which the credential parts are persisted.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyTokenType    = "token_type"
)

// Keys lists every key a Store manages.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyTokenType}

var (
	// ErrNotFound is returned by Backend.Get when the key holds no value.
	ErrNotFound = errors.New("token not found")

	// ErrReadOnly is returned by backends that cannot be written to.
	ErrReadOnly = errors.New("token storage is read-only")
)

// Backend reads and writes plain string values under fixed keys.
type Backend interface {
	// Get returns the value for key, or ErrNotFound if it is missing or empty.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
