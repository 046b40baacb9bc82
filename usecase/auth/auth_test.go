package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/worklane/boardsync/domain"
)

type memorySessionStore struct {
	sessions map[string]*domain.Session
	deletes  []string
	extends  map[string]int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*domain.Session),
		extends:  make(map[string]int),
	}
}

func (s *memorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *memorySessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.deletes = append(s.deletes, id)
	delete(s.sessions, id)
	return nil
}

func (s *memorySessionStore) Extend(_ context.Context, id string, ttlSeconds int) error {
	if sess, ok := s.sessions[id]; ok {
		sess.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	s.extends[id]++
	return nil
}

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestCreateSessionFromValidToken(t *testing.T) {
	store := newMemorySessionStore()
	uc := New(store, testSecret, time.Hour, nil)

	idpToken := signToken(t, jwt.MapClaims{
		"user_id": float64(7),
		"email":   "dev@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	sess, err := uc.CreateSession(context.Background(), idpToken)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.UserID != 7 || sess.Email != "dev@example.com" {
		t.Fatalf("unexpected identity %+v", sess)
	}
	if sess.Token != idpToken {
		t.Fatal("expected the session to carry the store bearer token")
	}
	if _, ok := store.sessions[sess.ID]; !ok {
		t.Fatal("expected the session persisted")
	}
}

func TestCreateSessionAcceptsStringUserID(t *testing.T) {
	uc := New(newMemorySessionStore(), testSecret, time.Hour, nil)

	sess, err := uc.CreateSession(context.Background(), signToken(t, jwt.MapClaims{
		"user_id": "42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.UserID != 42 {
		t.Fatalf("expected user 42, got %d", sess.UserID)
	}
}

func TestCreateSessionRejectsBadTokens(t *testing.T) {
	uc := New(newMemorySessionStore(), testSecret, time.Hour, nil)

	cases := map[string]string{
		"garbage": "not-a-jwt",
		"wrong secret": func() string {
			token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(7)}).
				SignedString([]byte("other-secret"))
			return token
		}(),
		"missing user": signToken(t, jwt.MapClaims{"email": "x@y"}),
		"expired": signToken(t, jwt.MapClaims{
			"user_id": float64(7),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := uc.CreateSession(context.Background(), token); err != domain.ErrUnauthorized {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestGetSessionExpiresLazily(t *testing.T) {
	store := newMemorySessionStore()
	uc := New(store, testSecret, time.Hour, nil)

	store.sessions["stale"] = &domain.Session{
		ID:        "stale",
		UserID:    7,
		Token:     "t",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	if _, err := uc.GetSession(context.Background(), "stale"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected the stale session rejected, got %v", err)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "stale" {
		t.Fatalf("expected lazy deletion, got %v", store.deletes)
	}
}

func TestGetSessionSlidesNearExpiry(t *testing.T) {
	store := newMemorySessionStore()
	uc := New(store, testSecret, time.Hour, nil)

	store.sessions["near"] = &domain.Session{
		ID:        "near",
		UserID:    7,
		Token:     "t",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	sess, err := uc.GetSession(context.Background(), "near")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if store.extends["near"] != 1 {
		t.Fatalf("expected the expiry extended once, got %d", store.extends["near"])
	}
	if sess.ExpiresAt.Before(time.Now().Add(50 * time.Minute)) {
		t.Fatalf("expected the returned session to carry the new expiry, got %v", sess.ExpiresAt)
	}
}

func TestGetSessionLeavesFreshSessionsAlone(t *testing.T) {
	store := newMemorySessionStore()
	uc := New(store, testSecret, time.Hour, nil)

	store.sessions["fresh"] = &domain.Session{
		ID:        "fresh",
		UserID:    7,
		Token:     "t",
		ExpiresAt: time.Now().Add(55 * time.Minute),
	}

	if _, err := uc.GetSession(context.Background(), "fresh"); err != nil {
		t.Fatalf("get session: %v", err)
	}
	if store.extends["fresh"] != 0 {
		t.Fatalf("expected no extension while plenty of life remains, got %d", store.extends["fresh"])
	}
}

func TestRevokeSessionDeletes(t *testing.T) {
	store := newMemorySessionStore()
	uc := New(store, testSecret, time.Hour, nil)
	store.sessions["live"] = &domain.Session{ID: "live", UserID: 7, Token: "t", ExpiresAt: time.Now().Add(time.Hour)}

	if err := uc.RevokeSession(context.Background(), "live"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, ok := store.sessions["live"]; ok {
		t.Fatal("expected the session removed")
	}
}
