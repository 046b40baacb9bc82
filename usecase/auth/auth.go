package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
)

// UseCase exchanges identity-provider tokens for gateway sessions. Identity
// itself is owned externally; the session is only the explicit carrier of
// who the user is and which bearer token store calls use.
type UseCase struct {
	sessions repository.SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

func New(sessions repository.SessionStore, secret string, ttl time.Duration, logger *zap.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// CreateSession verifies the identity provider's JWT and persists a gateway
// session carrying the user identity and the token for outgoing store calls.
func (uc *UseCase) CreateSession(ctx context.Context, idpToken string) (*domain.Session, error) {
	token, err := jwt.Parse(idpToken, func(t *jwt.Token) (interface{}, error) {
		return uc.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		uc.logger.Warn("invalid identity token", zap.Error(err))
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	userID := claimInt64(claims, "user_id")
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	email, _ := claims["email"].(string)

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Token:     idpToken,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession resolves a gateway session, expiring it lazily. Active sessions
// slide: once less than half the TTL remains, the expiry is pushed out, so a
// session only dies after real inactivity.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if session.IsExpired(now) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	if session.ExpiresAt.Sub(now) < uc.ttl/2 {
		if err := uc.sessions.Extend(ctx, sessionID, int(uc.ttl.Seconds())); err != nil {
			uc.logger.Warn("session extend failed", zap.Error(err))
		} else {
			session.ExpiresAt = now.Add(uc.ttl)
		}
	}
	return session, nil
}

// RevokeSession is the logout teardown: the session disappears and with it
// the single source of identity truth.
func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func claimInt64(claims jwt.MapClaims, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
	}
	return 0
}
