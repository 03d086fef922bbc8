// internal/reqctx/reqctx.go
package reqctx

import (
	"context"
	"time"
)

type key int

const (
	keyRequestID key = iota
	keyIDNumber
	keyRole
	keySessionID
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

func WithIDNumber(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyIDNumber, id)
}

func GetIDNumber(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyIDNumber).(string)
	return v, ok && v != ""
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, keyRole, role)
}

func GetRole(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRole).(string)
	return v, ok
}

// WithSession кладёт jti и срок жизни текущей сессии (нужно для logout/refresh).
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, keySessionID, s)
}

func GetSession(ctx context.Context) (Session, bool) {
	v, ok := ctx.Value(keySessionID).(Session)
	return v, ok
}

type Session struct {
	ID        string
	ExpiresAt time.Time
}
