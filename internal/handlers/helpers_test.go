package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wallmag/internal/models"
	"wallmag/internal/repository"
	"wallmag/internal/services"
	"wallmag/internal/utils"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

const testSecret = "handler-secret"

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.IDNumber] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.IDNumber]; ok {
		return repository.ErrAlreadyExists
	}
	m.users[u.IDNumber] = u
	return nil
}

func (m *memUsers) GetByIDNumber(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.BackupCodes = append([]string(nil), u.BackupCodes...)
	return &cp, nil
}

func (m *memUsers) update(id string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *memUsers) SetTwoFactor(_ context.Context, id string, enabled bool, codes []string) error {
	return m.update(id, func(u *models.User) { u.TwoFactorEnabled, u.BackupCodes = enabled, codes })
}

func (m *memUsers) UpdateBackupCodes(_ context.Context, id string, codes []string) error {
	return m.update(id, func(u *models.User) { u.BackupCodes = codes })
}

type captureSender struct {
	mu   sync.Mutex
	last string
}

func (c *captureSender) SendPasswordResetOTP(_ context.Context, _, _, otp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = otp
	return nil
}

func (c *captureSender) SendLoginCode(_ context.Context, _, otp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = otp
	return nil
}

func (c *captureSender) code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type brokenCache struct{}

func (brokenCache) Save(context.Context, string, string, string, time.Duration) error {
	return context.DeadlineExceeded
}
func (brokenCache) Get(context.Context, string, string) (*models.OTPEntry, error) {
	return nil, context.DeadlineExceeded
}
func (brokenCache) MarkVerified(context.Context, string, string) error { return context.DeadlineExceeded }
func (brokenCache) IncrementAttempts(context.Context, string, string) (int, error) {
	return 0, context.DeadlineExceeded
}
func (brokenCache) Delete(context.Context, string, string) error { return context.DeadlineExceeded }

func newTestRedis(t *testing.T) *red.Client {
	t.Helper()
	server := miniredis.RunT(t)
	client := red.NewClient(&red.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testUser(t *testing.T, id, password, role string) *models.User {
	t.Helper()
	hash, err := utils.HashWithCost(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &models.User{IDNumber: id, Name: "Asha", Email: "asha@example.com", PasswordHash: hash, Role: role}
}

func newAuthService(t *testing.T, users *memUsers, sender *captureSender) *services.AuthService {
	t.Helper()
	client := newTestRedis(t)
	return services.NewAuthService(users, repository.NewOTPStore(client), sender,
		repository.NewSessionDenylist(client), testSecret, time.Hour, 4, false)
}

func jsonRequest(method, target string, body any, cookies ...*http.Cookie) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("ответ не JSON: %v (%s)", err, rec.Body.String())
	}
}
