package services

import (
	"context"
	"time"

	"wallmag/internal/models"
)

// UserRepo реализуют repository.UserRepository (Postgres) и repository.MongoUserRepository.
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	GetByIDNumber(ctx context.Context, idNumber string) (*models.User, error)
	UpdatePassword(ctx context.Context, idNumber, passwordHash string) error
	SetTwoFactor(ctx context.Context, idNumber string, enabled bool, backupCodes []string) error
	UpdateBackupCodes(ctx context.Context, idNumber string, backupCodes []string) error
}

type OTPCache interface {
	Save(ctx context.Context, purpose, idNumber, hash string, ttl time.Duration) error
	Get(ctx context.Context, purpose, idNumber string) (*models.OTPEntry, error)
	MarkVerified(ctx context.Context, purpose, idNumber string) error
	IncrementAttempts(ctx context.Context, purpose, idNumber string) (int, error)
	Delete(ctx context.Context, purpose, idNumber string) error
}

type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// OTPSender доставляет коды пользователю; реализация: EmailService.
type OTPSender interface {
	SendPasswordResetOTP(ctx context.Context, to, name, otp string) error
	SendLoginCode(ctx context.Context, to, otp string) error
}

type PostStore interface {
	Query(q models.PostQuery) models.PostPage
	LatestByCategory(category models.Category, limit int) []models.Post
	Featured() *models.Post
	GetByID(id string) *models.Post
	Like(id string) *models.Post
	AddSubmission(sub models.NewSubmission) models.Post
	Pending() []models.Post
	Approve(id string) *models.Post
}

// SubmissionNotifier сообщает модератору о новой публикации; не должен блокировать запрос.
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, post models.Post)
}
