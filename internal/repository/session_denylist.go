package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
)

const sessionDenylistPrefix = "session:revoked:"

// SessionDenylist: отозванные jti сессий; запись живёт не дольше самой сессии.
type SessionDenylist struct {
	client *red.Client
}

func NewSessionDenylist(client *red.Client) *SessionDenylist {
	return &SessionDenylist{client: client}
}

func (d *SessionDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return errors.New("jti is required")
	}
	// Сессия уже истекла, запоминать нечего.
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, sessionDenylistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

func (d *SessionDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return false, errors.New("jti is required")
	}
	n, err := d.client.Exists(ctx, sessionDenylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis check session: %w", err)
	}
	return n > 0, nil
}
