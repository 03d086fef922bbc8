package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallmag/internal/logger"
	"wallmag/internal/models"
	"wallmag/internal/repository"
	"wallmag/internal/utils"

	"go.uber.org/zap"
)

const (
	ForgotTokenTTL    = 5 * time.Minute
	MinPasswordLength = 8
)

type PasswordService struct {
	users            UserRepo
	cache            OTPCache
	otp              *otpIssuer
	sender           OTPSender
	jwtSecret        string
	deliveryRequired bool
}

func NewPasswordService(users UserRepo, cache OTPCache, sender OTPSender, jwtSecret string, otpCost int, deliveryRequired bool) *PasswordService {
	return &PasswordService{
		users:            users,
		cache:            cache,
		otp:              newOTPIssuer(cache, otpCost),
		sender:           sender,
		jwtSecret:        jwtSecret,
		deliveryRequired: deliveryRequired,
	}
}

// WithCodeGenerator подменяет генератор кода (для тестов).
func (s *PasswordService) WithCodeGenerator(gen func() (string, error)) *PasswordService {
	if gen != nil {
		s.otp.generate = gen
	}
	return s
}

// RequestReset выпускает OTP для сброса пароля и возвращает подписанный forgot-токен.
// Код уходит только на почту пользователя.
func (s *PasswordService) RequestReset(ctx context.Context, idNumber string) (string, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return "", ErrInvalidRequest
	}
	log := logger.WithCtx(ctx).With(zap.String("id_number", idNumber))
	log.Info("Запрос на сброс пароля")

	user, err := s.users.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Пользователь для сброса пароля не найден")
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	code, err := s.otp.issue(ctx, models.OTPPurposeForgot, user.IDNumber)
	if err != nil {
		return "", err
	}

	if err := s.sender.SendPasswordResetOTP(ctx, user.Email, user.Name, code); err != nil {
		if s.deliveryRequired {
			return "", fmt.Errorf("%w: %v", ErrEmailDelivery, err)
		}
		// запись в кэше остаётся, клиент получает 200
		log.Warn("Не удалось отправить OTP на почту", zap.Error(err))
	}

	token, _, err := utils.GenerateToken(s.jwtSecret, user.IDNumber, "", utils.TokenTypeForgot, ForgotTokenTTL)
	if err != nil {
		return "", fmt.Errorf("sign forgot token: %w", err)
	}

	log.Info("OTP для сброса пароля выпущен")
	return token, nil
}

// VerifyOTP проверяет код для id_number из forgot-токена и помечает запись verified.
func (s *PasswordService) VerifyOTP(ctx context.Context, forgotToken, code string) error {
	claims, err := utils.ParseToken(s.jwtSecret, forgotToken, utils.TokenTypeForgot)
	if err != nil {
		return ErrUnauthorized
	}

	code = strings.TrimSpace(code)
	if !isSixDigits(code) {
		return ErrInvalidRequest
	}

	if err := s.otp.check(ctx, models.OTPPurposeForgot, claims.Subject, code); err != nil {
		logger.WithCtx(ctx).Warn("OTP не принят", zap.String("id_number", claims.Subject), zap.Error(err))
		return err
	}

	if err := s.cache.MarkVerified(ctx, models.OTPPurposeForgot, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotRequested
		}
		return fmt.Errorf("mark otp verified: %w", err)
	}

	logger.WithCtx(ctx).Info("OTP подтверждён", zap.String("id_number", claims.Subject))
	return nil
}

// ResetPassword меняет пароль после подтверждённого OTP и удаляет запись.
func (s *PasswordService) ResetPassword(ctx context.Context, forgotToken, newPassword string) error {
	claims, err := utils.ParseToken(s.jwtSecret, forgotToken, utils.TokenTypeForgot)
	if err != nil {
		return ErrUnauthorized
	}
	idNumber := claims.Subject

	if len([]rune(newPassword)) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	entry, err := s.cache.Get(ctx, models.OTPPurposeForgot, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotRequested
		}
		return fmt.Errorf("load otp: %w", err)
	}
	if !entry.Verified {
		return ErrOTPNotVerified
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, idNumber, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.cache.Delete(ctx, models.OTPPurposeForgot, idNumber); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось удалить OTP после сброса пароля",
			zap.String("id_number", idNumber), zap.Error(err))
	}

	logger.WithCtx(ctx).Info("Пароль успешно сброшен", zap.String("id_number", idNumber))
	return nil
}
