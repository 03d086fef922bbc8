package repository

import (
	"context"
	"errors"
	"fmt"

	"wallmag/internal/logger"
	"wallmag/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// pgExecutor: общее подмножество pgxpool.Pool и pgxmock.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id_number", "name", "email", "password_hash", "two_factor_enabled",
	"backup_codes", "role", "created_at", "updated_at",
}

type UserRepository struct {
	db      pgExecutor
	builder sq.StatementBuilderType
}

func NewUserRepository(db pgExecutor) *UserRepository {
	return &UserRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (repo)", zap.String("id_number", user.IDNumber))

	if user.Role == "" {
		user.Role = models.RoleReader
	}
	codes := user.BackupCodes
	if codes == nil {
		codes = []string{}
	}

	query, args, err := r.builder.Insert("users").
		Columns("id_number", "name", "email", "password_hash", "two_factor_enabled", "backup_codes", "role").
		Values(user.IDNumber, user.Name, user.Email, user.PasswordHash, user.TwoFactorEnabled, codes, user.Role).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		logger.Log.Error("Ошибка создания пользователя (repo)", zap.Error(err))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByIDNumber(ctx context.Context, idNumber string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по id_number (repo)", zap.String("id_number", idNumber))

	query, args, err := r.builder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id_number": idNumber}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var u models.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&u.IDNumber,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.TwoFactorEnabled,
		&u.BackupCodes,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, idNumber, passwordHash string) error {
	return r.update(ctx, idNumber, map[string]any{"password_hash": passwordHash})
}

// SetTwoFactor включает/выключает 2FA и заменяет набор хешей резервных кодов.
func (r *UserRepository) SetTwoFactor(ctx context.Context, idNumber string, enabled bool, backupCodes []string) error {
	if backupCodes == nil {
		backupCodes = []string{}
	}
	return r.update(ctx, idNumber, map[string]any{
		"two_factor_enabled": enabled,
		"backup_codes":       backupCodes,
	})
}

func (r *UserRepository) UpdateBackupCodes(ctx context.Context, idNumber string, backupCodes []string) error {
	if backupCodes == nil {
		backupCodes = []string{}
	}
	return r.update(ctx, idNumber, map[string]any{"backup_codes": backupCodes})
}

func (r *UserRepository) update(ctx context.Context, idNumber string, fields map[string]any) error {
	query, args, err := r.builder.Update("users").
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id_number": idNumber}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка обновления пользователя (repo)", zap.String("id_number", idNumber), zap.Error(err))
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
