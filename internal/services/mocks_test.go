package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wallmag/internal/models"
	"wallmag/internal/repository"
	"wallmag/internal/utils"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

const testSecret = "test-secret"

// Мок-репозиторий пользователей
type mockUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	getErr error
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.IDNumber] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.IDNumber]; ok {
		return repository.ErrAlreadyExists
	}
	cp := *user
	m.users[user.IDNumber] = &cp
	return nil
}

func (m *mockUserRepo) GetByIDNumber(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.BackupCodes = append([]string(nil), u.BackupCodes...)
	return &cp, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) SetTwoFactor(_ context.Context, id string, enabled bool, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TwoFactorEnabled = enabled
	u.BackupCodes = codes
	return nil
}

func (m *mockUserRepo) UpdateBackupCodes(_ context.Context, id string, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.BackupCodes = codes
	return nil
}

func (m *mockUserRepo) get(id string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

// Мок отправителя: запоминает последние коды
type mockSender struct {
	mu        sync.Mutex
	err       error
	resetTo   string
	resetCode string
	loginCode string
	calls     int
}

func (m *mockSender) SendPasswordResetOTP(_ context.Context, to, _ string, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.resetTo, m.resetCode = to, otp
	return m.err
}

func (m *mockSender) SendLoginCode(_ context.Context, _ string, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.loginCode = otp
	return m.err
}

// Кэш, который всегда падает
type failingCache struct{}

var errCacheDown = errors.New("cache unreachable")

func (failingCache) Save(context.Context, string, string, string, time.Duration) error {
	return errCacheDown
}
func (failingCache) Get(context.Context, string, string) (*models.OTPEntry, error) {
	return nil, errCacheDown
}
func (failingCache) MarkVerified(context.Context, string, string) error { return errCacheDown }
func (failingCache) IncrementAttempts(context.Context, string, string) (int, error) {
	return 0, errCacheDown
}
func (failingCache) Delete(context.Context, string, string) error { return errCacheDown }

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("не удалось запустить miniredis: %v", err)
	}
	client := red.NewClient(&red.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return client, server
}

func fixedCode(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

func mustHash(t *testing.T, s string) string {
	t.Helper()
	h, err := utils.HashWithCost(s, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func testUser(t *testing.T, id, password string) *models.User {
	t.Helper()
	return &models.User{
		IDNumber:     id,
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: mustHash(t, password),
		Role:         models.RoleReader,
	}
}
