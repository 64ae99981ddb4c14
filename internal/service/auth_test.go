package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tastebook/internal/config"
	"tastebook/internal/model"
)

// fakeTokenStore is an in-memory RefreshTokenRepository for rotation tests.
type fakeTokenStore struct {
	tokens map[string]*model.RefreshToken // keyed by ID
	nextID int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*model.RefreshToken)}
}

func (f *fakeTokenStore) Create(ctx context.Context, token *model.RefreshToken) error {
	f.nextID++
	token.ID = fmt.Sprintf("tok-%d", f.nextID)
	token.CreatedAt = time.Now()
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenStore) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	for _, token := range f.tokens {
		if token.TokenHash == tokenHash {
			return token, nil
		}
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (f *fakeTokenStore) Revoke(ctx context.Context, id string, replacedBy *string) error {
	token, ok := f.tokens[id]
	if !ok {
		return model.ErrRefreshTokenNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	token.ReplacedBy = replacedBy
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	now := time.Now()
	for _, token := range f.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenStore) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeTokenStore) activeCount(userID int64) int {
	n := 0
	for _, token := range f.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			n++
		}
	}
	return n
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 604800,
	}
}

func TestGenerateTokenPair(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewAuthService(store, testAuthConfig())

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expected ExpiresIn=900, got %d", pair.ExpiresIn)
	}

	// The access token must carry the user ID and verify with the secret.
	parsed, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("access token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if int64(claims["user_id"].(float64)) != 7 {
		t.Errorf("expected user_id claim 7, got %v", claims["user_id"])
	}

	// Only the hash is stored, never the raw token.
	for _, token := range store.tokens {
		if token.TokenHash == pair.RefreshToken {
			t.Error("raw refresh token must not be stored")
		}
	}
}

func TestRefreshTokens_RotatesAndRevokesOld(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewAuthService(store, testAuthConfig())

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	newPair, userID, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens returned error: %v", err)
	}

	if userID != 7 {
		t.Errorf("expected user ID 7, got %d", userID)
	}
	if newPair.RefreshToken == pair.RefreshToken {
		t.Error("rotation must issue a new refresh token")
	}

	// The old token is revoked and linked to its replacement.
	old, err := store.FindByTokenHash(context.Background(), svc.hashToken(pair.RefreshToken))
	if err != nil {
		t.Fatalf("old token lookup failed: %v", err)
	}
	if !old.IsRevoked() {
		t.Error("old token should be revoked after rotation")
	}
	if old.ReplacedBy == nil {
		t.Error("old token should link to its replacement")
	}
	if store.activeCount(7) != 1 {
		t.Errorf("expected exactly 1 active token after rotation, got %d", store.activeCount(7))
	}
}

func TestRefreshTokens_ReuseRevokesFamily(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewAuthService(store, testAuthConfig())

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}
	if _, _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Replaying the already-rotated token is treated as theft.
	_, _, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)

	if !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused, got %v", err)
	}
	if store.activeCount(7) != 0 {
		t.Errorf("reuse must revoke the whole family, %d tokens still active", store.activeCount(7))
	}
}

func TestRefreshTokens_Expired(t *testing.T) {
	store := newFakeTokenStore()
	cfg := testAuthConfig()
	cfg.RefreshTokenMaxAge = -1 // issued already expired
	svc := NewAuthService(store, cfg)

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	_, _, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)

	if !errors.Is(err, model.ErrRefreshTokenExpired) {
		t.Errorf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefreshTokens_Unknown(t *testing.T) {
	svc := NewAuthService(newFakeTokenStore(), testAuthConfig())

	_, _, err := svc.RefreshTokens(context.Background(), "never-issued")

	if !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewAuthService(store, testAuthConfig())

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if err := svc.RevokeRefreshToken(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken returned error: %v", err)
	}
	if store.activeCount(7) != 0 {
		t.Error("token should be revoked after logout")
	}
}
