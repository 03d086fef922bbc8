package services

import (
	"context"
	"errors"
	"fmt"

	"wallmag/internal/logger"
	"wallmag/internal/repository"
	"wallmag/internal/utils"

	"go.uber.org/zap"
)

const (
	BackupCodeCount  = 10
	BackupCodeLength = 8
)

type TwoFactorService struct {
	users UserRepo
	cost  int
}

func NewTwoFactorService(users UserRepo, hashCost int) *TwoFactorService {
	return &TwoFactorService{users: users, cost: hashCost}
}

// Enable включает 2FA и возвращает резервные коды в открытом виде (один раз);
// в хранилище попадают только их хеши.
func (s *TwoFactorService) Enable(ctx context.Context, idNumber string) ([]string, error) {
	user, err := s.users.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	codes, err := utils.GenerateBackupCodes(BackupCodeCount, BackupCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate backup codes: %w", err)
	}

	hashes := make([]string, 0, len(codes))
	for _, c := range codes {
		h, err := utils.HashWithCost(c, s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash backup code: %w", err)
		}
		hashes = append(hashes, h)
	}

	if err := s.users.SetTwoFactor(ctx, idNumber, true, hashes); err != nil {
		return nil, fmt.Errorf("enable 2fa: %w", err)
	}

	logger.WithCtx(ctx).Info("2FA включена", zap.String("id_number", idNumber))
	return codes, nil
}

func (s *TwoFactorService) Disable(ctx context.Context, idNumber, password string) error {
	if password == "" {
		return ErrInvalidRequest
	}

	user, err := s.users.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.WithCtx(ctx).Warn("Неверный пароль при отключении 2FA", zap.String("id_number", idNumber))
		return ErrInvalidCredentials
	}
	if !user.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if err := s.users.SetTwoFactor(ctx, idNumber, false, nil); err != nil {
		return fmt.Errorf("disable 2fa: %w", err)
	}

	logger.WithCtx(ctx).Info("2FA отключена", zap.String("id_number", idNumber))
	return nil
}
