package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wallmag/internal/models"

	red "github.com/redis/go-redis/v9"
)

const (
	fieldHash     = "hash"
	fieldVerified = "verified"
	fieldAttempts = "attempts"
)

// OTPStore хранит хеши одноразовых кодов в Redis с TTL.
// Ключ: <purpose>:<id_number>, например forgot:12345.
type OTPStore struct {
	client *red.Client
}

func NewOTPStore(client *red.Client) *OTPStore {
	return &OTPStore{client: client}
}

// Save перезаписывает запись и выставляет TTL одной транзакцией MULTI/EXEC,
// поэтому ключ без срока жизни не появляется.
func (s *OTPStore) Save(ctx context.Context, purpose, idNumber, hash string, ttl time.Duration) error {
	key, err := otpKey(purpose, idNumber)
	if err != nil {
		return err
	}
	if strings.TrimSpace(hash) == "" {
		return errors.New("otp hash is required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		fieldHash:     hash,
		fieldVerified: "false",
		fieldAttempts: "0",
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, purpose, idNumber string) (*models.OTPEntry, error) {
	key, err := otpKey(purpose, idNumber)
	if err != nil {
		return nil, err
	}

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall otp: %w", err)
	}
	if len(values) == 0 || values[fieldHash] == "" {
		return nil, ErrNotFound
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ttl otp: %w", err)
	}

	attempts, _ := strconv.Atoi(values[fieldAttempts])

	return &models.OTPEntry{
		Purpose:  purpose,
		IDNumber: idNumber,
		Hash:     values[fieldHash],
		Verified: values[fieldVerified] == "true",
		Attempts: attempts,
		TTL:      ttl,
	}, nil
}

// Обновление поля только у существующей записи, одним скриптом: между проверкой
// и записью ключ не может истечь, поэтому хеш без TTL не появляется.
var (
	markVerifiedScript = red.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)
	incrAttemptsScript = red.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)
)

// MarkVerified ставит verified=true; HSET не трогает TTL ключа.
func (s *OTPStore) MarkVerified(ctx context.Context, purpose, idNumber string) error {
	key, err := otpKey(purpose, idNumber)
	if err != nil {
		return err
	}

	res, err := markVerifiedScript.Run(ctx, s.client, []string{key}, fieldVerified, "true").Int64()
	if err != nil {
		return fmt.Errorf("redis mark otp verified: %w", err)
	}
	if res < 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementAttempts увеличивает счётчик неудачных попыток и возвращает новое значение.
func (s *OTPStore) IncrementAttempts(ctx context.Context, purpose, idNumber string) (int, error) {
	key, err := otpKey(purpose, idNumber)
	if err != nil {
		return 0, err
	}

	count, err := incrAttemptsScript.Run(ctx, s.client, []string{key}, fieldAttempts).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis hincrby otp attempts: %w", err)
	}
	if count < 0 {
		return 0, ErrNotFound
	}
	return int(count), nil
}

func (s *OTPStore) Delete(ctx context.Context, purpose, idNumber string) error {
	key, err := otpKey(purpose, idNumber)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	return nil
}

func otpKey(purpose, idNumber string) (string, error) {
	purpose = strings.TrimSpace(purpose)
	idNumber = strings.TrimSpace(idNumber)
	if purpose == "" || idNumber == "" {
		return "", errors.New("purpose and id_number are required")
	}
	return purpose + ":" + idNumber, nil
}
