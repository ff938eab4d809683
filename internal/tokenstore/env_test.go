package tokenstore

import (
	"context"
	"errors"
	"testing"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestEnvBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := newEnvBackend("AMS_", fakeEnv(map[string]string{
		"AMS_ACCESS_TOKEN": "static-token",
		"AMS_TOKEN_TYPE":   "bearer",
	}))
	if err != nil {
		t.Fatalf("newEnvBackend: %v", err)
	}

	got, err := backend.Get(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "static-token" {
		t.Errorf("Get = %q, want %q", got, "static-token")
	}

	if _, err := backend.Get(ctx, KeyRefreshToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get refresh token: got %v, want ErrNotFound", err)
	}

	if err := backend.Set(ctx, KeyAccessToken, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Set: got %v, want ErrReadOnly", err)
	}
	if err := backend.Delete(ctx, KeyAccessToken); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete: got %v, want ErrReadOnly", err)
	}
}

func TestNewEnvBackendMissingVariable(t *testing.T) {
	if _, err := newEnvBackend("AMS_", fakeEnv(nil)); err == nil {
		t.Fatal("expected error when access token variable is unset")
	}
	if _, err := newEnvBackend("", fakeEnv(nil)); err == nil {
		t.Fatal("expected error for empty prefix")
	}
}

func TestNewEnvBackendFromProcessEnv(t *testing.T) {
	t.Setenv("AMSTEST_ACCESS_TOKEN", "from-env")

	backend, err := NewEnvBackend("AMSTEST_")
	if err != nil {
		t.Fatalf("NewEnvBackend: %v", err)
	}
	got, err := backend.Get(context.Background(), KeyAccessToken)
	if err != nil || got != "from-env" {
		t.Fatalf("Get = %q, %v; want %q", got, err, "from-env")
	}
}
