package tokenstore

import (
	"context"
	"errors"
	"testing"
)

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(NewMemoryBackend())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestStoreReadYourWrites(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	for _, token := range []string{"T1", "T2", "T3"} {
		if err := store.SetTokens(ctx, Credential{AccessToken: token, RefreshToken: "R-" + token}); err != nil {
			t.Fatalf("SetTokens: %v", err)
		}
		got, err := store.AccessToken(ctx)
		if err != nil {
			t.Fatalf("AccessToken: %v", err)
		}
		if got != token {
			t.Errorf("AccessToken = %q, want %q", got, token)
		}
		refresh, err := store.RefreshToken(ctx)
		if err != nil {
			t.Fatalf("RefreshToken: %v", err)
		}
		if refresh != "R-"+token {
			t.Errorf("RefreshToken = %q, want %q", refresh, "R-"+token)
		}
	}
}

func TestStoreClearTokens(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	if store.IsAuthenticated(ctx) {
		t.Fatal("empty store reports authenticated")
	}

	if err := store.SetTokens(ctx, Credential{AccessToken: "A", RefreshToken: "R", TokenType: "bearer"}); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if !store.IsAuthenticated(ctx) {
		t.Fatal("store with access token reports unauthenticated")
	}

	if err := store.ClearTokens(ctx); err != nil {
		t.Fatalf("ClearTokens: %v", err)
	}
	if err := store.ClearTokens(ctx); err != nil {
		t.Fatalf("second ClearTokens: %v", err)
	}
	if store.IsAuthenticated(ctx) {
		t.Fatal("store reports authenticated after ClearTokens")
	}

	cred, err := store.Credential(ctx)
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if cred != (Credential{}) {
		t.Errorf("Credential after clear = %+v, want zero value", cred)
	}
}

func TestStoreSetTokens(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		initial *Credential
		input   Credential
		want    Credential
		wantErr bool
	}{
		{
			name:  "defaults token type",
			input: Credential{AccessToken: "A", RefreshToken: "R"},
			want:  Credential{AccessToken: "A", RefreshToken: "R", TokenType: DefaultTokenType},
		},
		{
			name:  "keeps explicit token type",
			input: Credential{AccessToken: "A", RefreshToken: "R", TokenType: "Bearer"},
			want:  Credential{AccessToken: "A", RefreshToken: "R", TokenType: "Bearer"},
		},
		{
			name:    "drops stale refresh token",
			initial: &Credential{AccessToken: "old", RefreshToken: "old-refresh"},
			input:   Credential{AccessToken: "A"},
			want:    Credential{AccessToken: "A", TokenType: DefaultTokenType},
		},
		{
			name:    "rejects empty access token",
			input:   Credential{RefreshToken: "R"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore(t)
			if tt.initial != nil {
				if err := store.SetTokens(ctx, *tt.initial); err != nil {
					t.Fatalf("initial SetTokens: %v", err)
				}
			}

			err := store.SetTokens(ctx, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetTokens: %v", err)
			}

			got, err := store.Credential(ctx)
			if err != nil {
				t.Fatalf("Credential: %v", err)
			}
			if got != tt.want {
				t.Errorf("Credential = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStoreOnReadOnlyBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := newEnvBackend("AMS_", fakeEnv(map[string]string{"AMS_ACCESS_TOKEN": "static"}))
	if err != nil {
		t.Fatalf("newEnvBackend: %v", err)
	}
	store, err := NewStore(backend)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if !store.IsAuthenticated(ctx) {
		t.Fatal("expected static env token to authenticate")
	}
	if err := store.SetTokens(ctx, Credential{AccessToken: "new"}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SetTokens: got %v, want ErrReadOnly", err)
	}
	if err := store.ClearTokens(ctx); !errors.Is(err, ErrReadOnly) {
		t.Errorf("ClearTokens: got %v, want ErrReadOnly", err)
	}
}

func TestCredentialOAuth2Token(t *testing.T) {
	cred := Credential{AccessToken: "A", RefreshToken: "R", TokenType: "bearer"}

	tok := cred.OAuth2Token()
	if tok.Type() != "Bearer" {
		t.Errorf("Type() = %q, want %q", tok.Type(), "Bearer")
	}
	if back := CredentialFromOAuth2(tok); back != cred {
		t.Errorf("CredentialFromOAuth2 = %+v, want %+v", back, cred)
	}
}

func TestNewStoreNilBackend(t *testing.T) {
	if _, err := NewStore(nil); err == nil {
		t.Fatal("expected error for nil backend")
	}
}
