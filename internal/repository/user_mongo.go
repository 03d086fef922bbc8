package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallmag/internal/logger"
	"wallmag/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const usersCollection = "users"

// MongoUserRepository: хранилище пользователей в MongoDB (коллекция users).
type MongoUserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		coll: db.Collection(usersCollection),
		now:  time.Now,
	}
}

// EnsureIndexes создаёт уникальный индекс по id_number.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id_number", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_id_number"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (mongo)", zap.String("id_number", user.IDNumber))

	if user.Role == "" {
		user.Role = models.RoleReader
	}
	if user.BackupCodes == nil {
		user.BackupCodes = []string{}
	}
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		logger.Log.Error("Ошибка создания пользователя (mongo)", zap.Error(err))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByIDNumber(ctx context.Context, idNumber string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.D{{Key: "id_number", Value: idNumber}}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, idNumber, passwordHash string) error {
	return r.update(ctx, idNumber, bson.D{{Key: "password_hash", Value: passwordHash}})
}

func (r *MongoUserRepository) SetTwoFactor(ctx context.Context, idNumber string, enabled bool, backupCodes []string) error {
	if backupCodes == nil {
		backupCodes = []string{}
	}
	return r.update(ctx, idNumber, bson.D{
		{Key: "two_factor_enabled", Value: enabled},
		{Key: "backup_codes", Value: backupCodes},
	})
}

func (r *MongoUserRepository) UpdateBackupCodes(ctx context.Context, idNumber string, backupCodes []string) error {
	if backupCodes == nil {
		backupCodes = []string{}
	}
	return r.update(ctx, idNumber, bson.D{{Key: "backup_codes", Value: backupCodes}})
}

func (r *MongoUserRepository) update(ctx context.Context, idNumber string, set bson.D) error {
	set = append(set, bson.E{Key: "updated_at", Value: r.now().UTC()})

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "id_number", Value: idNumber}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		logger.Log.Error("Ошибка обновления пользователя (mongo)", zap.String("id_number", idNumber), zap.Error(err))
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
