package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallmag/internal/logger"
	"wallmag/internal/repository"
	"wallmag/internal/utils"

	"go.uber.org/zap"
)

const (
	OTPTTL         = 300 * time.Second
	MaxOTPAttempts = 5
)

// otpIssuer: общая механика кодов для сброса пароля и входа с 2FA.
type otpIssuer struct {
	cache    OTPCache
	cost     int
	generate func() (string, error)
}

func newOTPIssuer(cache OTPCache, cost int) *otpIssuer {
	return &otpIssuer{cache: cache, cost: cost, generate: utils.GenerateOTP}
}

// issue генерирует код, сохраняет его bcrypt-хеш и возвращает открытый код.
// Повторный вызов перезаписывает запись и сбрасывает окно.
func (o *otpIssuer) issue(ctx context.Context, purpose, idNumber string) (string, error) {
	code, err := o.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	hash, err := utils.HashWithCost(code, o.cost)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}

	if err := o.cache.Save(ctx, purpose, idNumber, hash, OTPTTL); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// check сверяет код с записью; неверный код засчитывается через fail.
func (o *otpIssuer) check(ctx context.Context, purpose, idNumber, code string) error {
	entry, err := o.cache.Get(ctx, purpose, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotRequested
		}
		return fmt.Errorf("load otp: %w", err)
	}

	if utils.CheckPasswordHash(strings.TrimSpace(code), entry.Hash) {
		return nil
	}

	return o.fail(ctx, purpose, idNumber)
}

// fail засчитывает неудачную попытку (неверный код или резервный код).
// После MaxOTPAttempts запись удаляется.
func (o *otpIssuer) fail(ctx context.Context, purpose, idNumber string) error {
	attempts, err := o.cache.IncrementAttempts(ctx, purpose, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotRequested
		}
		return fmt.Errorf("increment otp attempts: %w", err)
	}

	if attempts >= MaxOTPAttempts {
		logger.WithCtx(ctx).Warn("Превышено число попыток ввода OTP, запись удалена",
			zap.String("purpose", purpose),
			zap.String("id_number", idNumber),
		)
		if err := o.cache.Delete(ctx, purpose, idNumber); err != nil {
			return fmt.Errorf("delete otp: %w", err)
		}
		return ErrTooManyAttempts
	}
	return ErrInvalidOTP
}

// active проверяет, что запись ещё жива (не истекла и не сожжена попытками).
func (o *otpIssuer) active(ctx context.Context, purpose, idNumber string) error {
	if _, err := o.cache.Get(ctx, purpose, idNumber); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotRequested
		}
		return fmt.Errorf("load otp: %w", err)
	}
	return nil
}

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
