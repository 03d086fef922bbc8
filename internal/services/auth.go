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

const TwoFactorTokenTTL = 5 * time.Minute

type AuthService struct {
	users            UserRepo
	cache            OTPCache
	otp              *otpIssuer
	sender           OTPSender
	sessions         SessionRevoker
	jwtSecret        string
	sessionTTL       time.Duration
	deliveryRequired bool
	now              func() time.Time
}

func NewAuthService(
	users UserRepo,
	cache OTPCache,
	sender OTPSender,
	sessions SessionRevoker,
	jwtSecret string,
	sessionTTL time.Duration,
	otpCost int,
	deliveryRequired bool,
) *AuthService {
	return &AuthService{
		users:            users,
		cache:            cache,
		otp:              newOTPIssuer(cache, otpCost),
		sender:           sender,
		sessions:         sessions,
		jwtSecret:        jwtSecret,
		sessionTTL:       sessionTTL,
		deliveryRequired: deliveryRequired,
		now:              time.Now,
	}
}

func (s *AuthService) WithCodeGenerator(gen func() (string, error)) *AuthService {
	if gen != nil {
		s.otp.generate = gen
	}
	return s
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// LoginResult: либо SessionToken (вход завершён), либо ChallengeToken (нужен второй фактор).
type LoginResult struct {
	User              *models.User
	SessionToken      string
	ChallengeToken    string
	TwoFactorRequired bool
}

// CreateUser: заведение учётной записи (используется cmd/useradd).
func (s *AuthService) CreateUser(ctx context.Context, user *models.User, plainPassword string) error {
	user.IDNumber = strings.TrimSpace(user.IDNumber)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.IDNumber == "" || user.Email == "" {
		return ErrInvalidRequest
	}
	if len([]rune(plainPassword)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if user.Role != "" && user.Role != models.RoleReader && user.Role != models.RoleEditor {
		return ErrInvalidRequest
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hashed

	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("Пользователь создан", zap.String("id_number", user.IDNumber), zap.String("role", user.Role))
	return nil
}

func (s *AuthService) Login(ctx context.Context, idNumber, password string) (*LoginResult, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" || password == "" {
		return nil, ErrInvalidRequest
	}
	log := logger.WithCtx(ctx).With(zap.String("id_number", idNumber))
	log.Info("Попытка входа")

	user, err := s.users.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Пользователь не найден")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Warn("Неверный пароль")
		return nil, ErrInvalidCredentials
	}

	if !user.TwoFactorEnabled {
		token, err := s.issueSession(user)
		if err != nil {
			return nil, err
		}
		log.Info("Вход выполнен")
		return &LoginResult{User: user, SessionToken: token}, nil
	}

	code, err := s.otp.issue(ctx, models.OTPPurposeLogin2FA, user.IDNumber)
	if err != nil {
		return nil, err
	}
	if err := s.sender.SendLoginCode(ctx, user.Email, code); err != nil {
		if s.deliveryRequired {
			return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
		}
		log.Warn("Не удалось отправить код входа", zap.Error(err))
	}

	challenge, _, err := utils.GenerateToken(s.jwtSecret, user.IDNumber, "", utils.TokenType2FA, TwoFactorTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign 2fa token: %w", err)
	}

	log.Info("Требуется второй фактор")
	return &LoginResult{User: user, ChallengeToken: challenge, TwoFactorRequired: true}, nil
}

// Verify2FA принимает код из письма или неиспользованный резервный код.
func (s *AuthService) Verify2FA(ctx context.Context, challengeToken, code string) (*LoginResult, error) {
	claims, err := utils.ParseToken(s.jwtSecret, challengeToken, utils.TokenType2FA)
	if err != nil {
		return nil, ErrUnauthorized
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidRequest
	}

	user, err := s.users.GetByIDNumber(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if isSixDigits(code) {
		if err := s.otp.check(ctx, models.OTPPurposeLogin2FA, user.IDNumber, code); err != nil {
			return nil, err
		}
	} else {
		// резервные коды делят счётчик попыток с кодом из письма
		if err := s.otp.active(ctx, models.OTPPurposeLogin2FA, user.IDNumber); err != nil {
			return nil, err
		}
		if err := s.consumeBackupCode(ctx, user, code); err != nil {
			if errors.Is(err, ErrInvalidOTP) {
				return nil, s.otp.fail(ctx, models.OTPPurposeLogin2FA, user.IDNumber)
			}
			return nil, err
		}
	}

	if err := s.cache.Delete(ctx, models.OTPPurposeLogin2FA, user.IDNumber); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось удалить код входа", zap.Error(err))
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("Второй фактор подтверждён", zap.String("id_number", user.IDNumber))
	return &LoginResult{User: user, SessionToken: token}, nil
}

func (s *AuthService) consumeBackupCode(ctx context.Context, user *models.User, code string) error {
	code = strings.ToUpper(code)
	for i, hash := range user.BackupCodes {
		if !utils.CheckPasswordHash(code, hash) {
			continue
		}
		rest := make([]string, 0, len(user.BackupCodes)-1)
		rest = append(rest, user.BackupCodes[:i]...)
		rest = append(rest, user.BackupCodes[i+1:]...)
		if err := s.users.UpdateBackupCodes(ctx, user.IDNumber, rest); err != nil {
			return fmt.Errorf("consume backup code: %w", err)
		}
		user.BackupCodes = rest
		logger.WithCtx(ctx).Info("Использован резервный код",
			zap.String("id_number", user.IDNumber), zap.Int("left", len(rest)))
		return nil
	}
	return ErrInvalidOTP
}

// Authenticate проверяет сессионный токен и денилист.
func (s *AuthService) Authenticate(ctx context.Context, sessionToken string) (*utils.TokenClaims, error) {
	claims, err := utils.ParseToken(s.jwtSecret, sessionToken, utils.TokenTypeSession)
	if err != nil || claims.ID == "" {
		return nil, ErrUnauthorized
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if revoked {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// RefreshSession выдаёт новый токен и отзывает старый jti.
func (s *AuthService) RefreshSession(ctx context.Context, idNumber, jti string, expiresAt time.Time) (string, error) {
	user, err := s.users.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Revoke(ctx, jti, expiresAt.Sub(s.now())); err != nil {
		return "", fmt.Errorf("revoke session: %w", err)
	}

	logger.WithCtx(ctx).Info("Сессия обновлена", zap.String("id_number", idNumber))
	return token, nil
}

// Logout отзывает текущую сессию, если токен валиден; невалидный токен не ошибка.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	claims, err := utils.ParseToken(s.jwtSecret, sessionToken, utils.TokenTypeSession)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	logger.WithCtx(ctx).Info("Выход пользователя", zap.String("id_number", claims.Subject))
	return nil
}

func (s *AuthService) Profile(ctx context.Context, idNumber string) (*models.User, error) {
	user, err := s.users.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueSession(user *models.User) (string, error) {
	role := user.Role
	if role == "" {
		role = models.RoleReader
	}
	token, _, err := utils.GenerateToken(s.jwtSecret, user.IDNumber, role, utils.TokenTypeSession, s.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
