package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"wallmag/internal/models"
	"wallmag/internal/repository"
	"wallmag/internal/utils"
)

func newPasswordService(t *testing.T, users *mockUserRepo, sender *mockSender, required bool) (*PasswordService, *repository.OTPStore, func(time.Duration)) {
	t.Helper()
	client, server := newTestRedis(t)
	store := repository.NewOTPStore(client)
	svc := NewPasswordService(users, store, sender, testSecret, 4, required)
	return svc, store, server.FastForward
}

func TestRequestReset_Success(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	sender := &mockSender{}
	svc, store, _ := newPasswordService(t, users, sender, false)
	ctx := context.Background()

	token, err := svc.RequestReset(ctx, "12345")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	claims, err := utils.ParseToken(testSecret, token, utils.TokenTypeForgot)
	if err != nil {
		t.Fatalf("forgot-токен невалиден: %v", err)
	}
	if claims.Subject != "12345" {
		t.Fatalf("sub = %q", claims.Subject)
	}
	if d := time.Until(claims.ExpiresAt); d <= 4*time.Minute || d > 5*time.Minute {
		t.Fatalf("срок токена %v вне ~5 минут", d)
	}

	if sender.resetTo != "asha@example.com" {
		t.Fatalf("письмо ушло не тому адресату: %q", sender.resetTo)
	}
	n, err := strconv.Atoi(sender.resetCode)
	if err != nil || n < 100000 || n > 999999 {
		t.Fatalf("код не шестизначный: %q", sender.resetCode)
	}

	entry, err := store.Get(ctx, models.OTPPurposeForgot, "12345")
	if err != nil {
		t.Fatalf("запись в кэше не создана: %v", err)
	}
	if entry.TTL <= 0 || entry.TTL > 300*time.Second {
		t.Fatalf("TTL вне (0, 300s]: %v", entry.TTL)
	}
	if entry.Hash == sender.resetCode || !utils.CheckPasswordHash(sender.resetCode, entry.Hash) {
		t.Fatal("в кэше должен лежать bcrypt-хеш отправленного кода")
	}
}

func TestRequestReset_UnknownUserWritesNothing(t *testing.T) {
	svc, store, _ := newPasswordService(t, newMockUserRepo(), &mockSender{}, false)

	if _, err := svc.RequestReset(context.Background(), "404"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ожидался ErrUserNotFound, получили %v", err)
	}
	if _, err := store.Get(context.Background(), models.OTPPurposeForgot, "404"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("запись не должна создаваться: %v", err)
	}
}

func TestRequestReset_EmptyID(t *testing.T) {
	svc, _, _ := newPasswordService(t, newMockUserRepo(), &mockSender{}, false)
	if _, err := svc.RequestReset(context.Background(), "   "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("ожидался ErrInvalidRequest, получили %v", err)
	}
}

func TestRequestReset_EmailFailurePolicy(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	sender := &mockSender{err: errors.New("smtp down")}

	bestEffort, store, _ := newPasswordService(t, users, sender, false)
	if _, err := bestEffort.RequestReset(context.Background(), "12345"); err != nil {
		t.Fatalf("best-effort доставка не должна ломать запрос: %v", err)
	}
	if _, err := store.Get(context.Background(), models.OTPPurposeForgot, "12345"); err != nil {
		t.Fatalf("запись должна остаться: %v", err)
	}

	required, store, _ := newPasswordService(t, users, sender, true)
	if _, err := required.RequestReset(context.Background(), "12345"); !errors.Is(err, ErrEmailDelivery) {
		t.Fatalf("ожидался ErrEmailDelivery, получили %v", err)
	}
	if _, err := store.Get(context.Background(), models.OTPPurposeForgot, "12345"); err != nil {
		t.Fatalf("запись не откатывается: %v", err)
	}
}

func TestRequestReset_CacheFailure(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	svc := NewPasswordService(users, failingCache{}, &mockSender{}, testSecret, 4, false)

	_, err := svc.RequestReset(context.Background(), "12345")
	if err == nil || !errors.Is(err, errCacheDown) {
		t.Fatalf("ожидалась ошибка кэша, получили %v", err)
	}
}

func TestRequestReset_SecondRequestSupersedesFirst(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	sender := &mockSender{}
	svc, _, _ := newPasswordService(t, users, sender, false)
	ctx := context.Background()

	svc.WithCodeGenerator(fixedCode("111111"))
	token, err := svc.RequestReset(ctx, "12345")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	svc.WithCodeGenerator(fixedCode("222222"))
	if _, err := svc.RequestReset(ctx, "12345"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	if err := svc.VerifyOTP(ctx, token, "111111"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("старый код должен быть недействителен: %v", err)
	}
	if err := svc.VerifyOTP(ctx, token, "222222"); err != nil {
		t.Fatalf("новый код не принят: %v", err)
	}
}

func TestVerifyAndResetFlow(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	svc, store, _ := newPasswordService(t, users, &mockSender{}, false)
	svc.WithCodeGenerator(fixedCode("123456"))
	ctx := context.Background()

	token, err := svc.RequestReset(ctx, "12345")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	if err := svc.ResetPassword(ctx, token, "new-password"); !errors.Is(err, ErrOTPNotVerified) {
		t.Fatalf("сброс без подтверждения: %v", err)
	}
	if err := svc.VerifyOTP(ctx, token, "123456"); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if err := svc.ResetPassword(ctx, token, "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("короткий пароль принят: %v", err)
	}
	if err := svc.ResetPassword(ctx, token, "new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if !utils.CheckPasswordHash("new-password", users.get("12345").PasswordHash) {
		t.Fatal("пароль не обновлён")
	}
	if _, err := store.Get(ctx, models.OTPPurposeForgot, "12345"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("запись OTP должна быть удалена после сброса")
	}
	if err := svc.ResetPassword(ctx, token, "another-password"); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("повторный сброс: %v", err)
	}
}

func TestVerifyOTP_AttemptsExhausted(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	svc, store, _ := newPasswordService(t, users, &mockSender{}, false)
	svc.WithCodeGenerator(fixedCode("123456"))
	ctx := context.Background()

	token, err := svc.RequestReset(ctx, "12345")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	for i := 1; i < MaxOTPAttempts; i++ {
		if err := svc.VerifyOTP(ctx, token, "000000"); !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("попытка %d: %v", i, err)
		}
	}
	if err := svc.VerifyOTP(ctx, token, "000000"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("ожидался ErrTooManyAttempts, получили %v", err)
	}
	if _, err := store.Get(ctx, models.OTPPurposeForgot, "12345"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("запись должна быть удалена")
	}
	if err := svc.VerifyOTP(ctx, token, "123456"); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("после удаления: %v", err)
	}
}

func TestVerifyOTP_ExpiredAndBadToken(t *testing.T) {
	users := newMockUserRepo(testUser(t, "12345", "old-password"))
	svc, _, fastForward := newPasswordService(t, users, &mockSender{}, false)
	svc.WithCodeGenerator(fixedCode("123456"))
	ctx := context.Background()

	token, err := svc.RequestReset(ctx, "12345")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	if err := svc.VerifyOTP(ctx, "garbage", "123456"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("битый токен: %v", err)
	}
	if err := svc.VerifyOTP(ctx, token, "12ab56"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("нецифровой код: %v", err)
	}

	fastForward(301 * time.Second)
	if err := svc.VerifyOTP(ctx, token, "123456"); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("истёкшая запись: %v", err)
	}
}
