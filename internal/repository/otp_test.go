package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallmag/internal/models"
)

func TestOTPStore_SaveSetsHashAndTTL(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, models.OTPPurposeForgot, "12345", "hash-1", 300*time.Second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got := server.HGet("forgot:12345", "hash"); got != "hash-1" {
		t.Fatalf("неожиданный hash %q", got)
	}
	if got := server.HGet("forgot:12345", "verified"); got != "false" {
		t.Fatalf("неожиданный verified %q", got)
	}
	if ttl := server.TTL("forgot:12345"); ttl <= 0 || ttl > 300*time.Second {
		t.Fatalf("TTL вне (0, 300s]: %v", ttl)
	}

	entry, err := store.Get(ctx, models.OTPPurposeForgot, "12345")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Hash != "hash-1" || entry.Verified || entry.Attempts != 0 {
		t.Fatalf("неожиданная запись: %+v", entry)
	}
}

func TestOTPStore_SaveOverwritesAndResetsWindow(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, models.OTPPurposeForgot, "12345", "old", 300*time.Second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.MarkVerified(ctx, models.OTPPurposeForgot, "12345"); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if _, err := store.IncrementAttempts(ctx, models.OTPPurposeForgot, "12345"); err != nil {
		t.Fatalf("IncrementAttempts: %v", err)
	}
	server.FastForward(200 * time.Second)

	if err := store.Save(ctx, models.OTPPurposeForgot, "12345", "new", 300*time.Second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entry, err := store.Get(ctx, models.OTPPurposeForgot, "12345")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Hash != "new" || entry.Verified || entry.Attempts != 0 {
		t.Fatalf("запись не перезаписана: %+v", entry)
	}
	if ttl := server.TTL("forgot:12345"); ttl != 300*time.Second {
		t.Fatalf("окно не сброшено: %v", ttl)
	}
}

func TestOTPStore_Expires(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, models.OTPPurposeForgot, "12345", "hash", 300*time.Second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	server.FastForward(301 * time.Second)

	if _, err := store.Get(ctx, models.OTPPurposeForgot, "12345"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound после истечения TTL, получили %v", err)
	}
	if err := store.MarkVerified(ctx, models.OTPPurposeForgot, "12345"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkVerified на истёкшей записи: %v", err)
	}
}

func TestOTPStore_MarkVerifiedKeepsTTL(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, models.OTPPurposeLogin2FA, "777", "hash", 300*time.Second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	server.FastForward(100 * time.Second)

	if err := store.MarkVerified(ctx, models.OTPPurposeLogin2FA, "777"); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if ttl := server.TTL("login2fa:777"); ttl != 200*time.Second {
		t.Fatalf("TTL изменился: %v", ttl)
	}
	if got := server.HGet("login2fa:777", "verified"); got != "true" {
		t.Fatalf("verified = %q", got)
	}
}

func TestOTPStore_IncrementAttemptsAndDelete(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	if _, err := store.IncrementAttempts(ctx, models.OTPPurposeForgot, "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получили %v", err)
	}

	if err := store.Save(ctx, models.OTPPurposeForgot, "1", "hash", time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for want := 1; want <= 3; want++ {
		got, err := store.IncrementAttempts(ctx, models.OTPPurposeForgot, "1")
		if err != nil {
			t.Fatalf("IncrementAttempts: %v", err)
		}
		if got != want {
			t.Fatalf("attempts = %d, ожидалось %d", got, want)
		}
	}

	if err := store.Delete(ctx, models.OTPPurposeForgot, "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if server.Exists("forgot:1") {
		t.Fatal("ключ не удалён")
	}
}

func TestOTPStore_RejectsEmptyKeyParts(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewOTPStore(client)

	if err := store.Save(context.Background(), "", "1", "hash", time.Minute); err == nil {
		t.Fatal("ожидалась ошибка для пустого purpose")
	}
	if err := store.Save(context.Background(), models.OTPPurposeForgot, " ", "hash", time.Minute); err == nil {
		t.Fatal("ожидалась ошибка для пустого id_number")
	}
	if err := store.Save(context.Background(), models.OTPPurposeForgot, "1", "hash", 0); err == nil {
		t.Fatal("ожидалась ошибка для нулевого TTL")
	}
}

func TestOTPStore_UpdatesNeverLeaveKeyWithoutTTL(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, models.OTPPurposeForgot, "42", "hash", 10*time.Second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.IncrementAttempts(ctx, models.OTPPurposeForgot, "42"); err != nil {
		t.Fatalf("IncrementAttempts: %v", err)
	}
	if err := store.MarkVerified(ctx, models.OTPPurposeForgot, "42"); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if ttl := server.TTL("forgot:42"); ttl <= 0 {
		t.Fatalf("после обновлений у ключа нет TTL: %v", ttl)
	}

	server.FastForward(11 * time.Second)

	if _, err := store.IncrementAttempts(ctx, models.OTPPurposeForgot, "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("IncrementAttempts на истёкшей записи: %v", err)
	}
	if err := store.MarkVerified(ctx, models.OTPPurposeForgot, "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkVerified на истёкшей записи: %v", err)
	}
	if err := store.MarkVerified(ctx, models.OTPPurposeLogin2FA, "never-issued"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkVerified без записи: %v", err)
	}

	if keys := server.Keys(); len(keys) != 0 {
		t.Fatalf("обновления воссоздали ключи без TTL: %v", keys)
	}
}
