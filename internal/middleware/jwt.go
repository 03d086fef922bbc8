package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"wallmag/internal/logger"
	"wallmag/internal/reqctx"
	"wallmag/internal/services"
	"wallmag/internal/utils"
	"wallmag/internal/utils/helpers"

	"go.uber.org/zap"
)

const SessionCookieName = "session"

type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.TokenClaims, error)
}

// SessionToken достаёт токен из cookie session, иначе из Authorization: Bearer.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// SessionAuth пропускает только запросы с действующей, не отозванной сессией.
func SessionAuth(auth SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			token := SessionToken(r)
			if token == "" {
				logger.WithCtx(r.Context()).Warn("SessionAuth: отсутствует сессия")
				helpers.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					logger.WithCtx(r.Context()).Warn("SessionAuth: неверная или отозванная сессия")
					helpers.Error(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				logger.WithCtx(r.Context()).Error("SessionAuth: ошибка проверки сессии", zap.Error(err))
				helpers.Error(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			ctx := reqctx.WithIDNumber(r.Context(), claims.Subject)
			ctx = reqctx.WithRole(ctx, claims.Role)
			ctx = reqctx.WithSession(ctx, reqctx.Session{ID: claims.ID, ExpiresAt: claims.ExpiresAt})

			logger.WithCtx(ctx).Debug("SessionAuth: сессия валидна", zap.String("role", claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
