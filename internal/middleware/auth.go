package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
)

// SessionKey is the request user-value under which the resolved session is
// stored for handlers.
const SessionKey = "session"

// SessionResolver resolves a gateway session id to the session struct.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// SessionAuth authenticates requests by their bearer session id and attaches
// the explicit Session struct for downstream components. No identity state
// lives anywhere else.
func SessionAuth(resolver SessionResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			sessionID := extractToken(ctx)
			if sessionID == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			sess, err := resolver.GetSession(ctx, sessionID)
			if err != nil {
				logger.Warn("session lookup failed", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.SetUserValue(SessionKey, sess)
			next(ctx)
		}
	}
}

// SessionFromRequest returns the session attached by SessionAuth.
func SessionFromRequest(ctx *fasthttp.RequestCtx) *domain.Session {
	sess, _ := ctx.UserValue(SessionKey).(*domain.Session)
	return sess
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
