package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"wallmag/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Интеграционный тест: нужен живой MongoDB в MONGO_TEST_URL.
func newTestMongoRepo(t *testing.T) *MongoUserRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("wallmag_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := NewMongoUserRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongoUserRepository_Lifecycle(t *testing.T) {
	repo := newTestMongoRepo(t)
	ctx := context.Background()

	user := &models.User{IDNumber: "12345", Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, models.RoleReader, user.Role)
	assert.ErrorIs(t, repo.Create(ctx, &models.User{IDNumber: "12345"}), ErrAlreadyExists)

	require.NoError(t, repo.UpdatePassword(ctx, "12345", "new-hash"))
	require.NoError(t, repo.SetTwoFactor(ctx, "12345", true, []string{"a", "b"}))
	require.NoError(t, repo.UpdateBackupCodes(ctx, "12345", []string{"b"}))

	got, err := repo.GetByIDNumber(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.True(t, got.TwoFactorEnabled)
	assert.Equal(t, []string{"b"}, got.BackupCodes)

	_, err = repo.GetByIDNumber(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "x"), ErrNotFound)
}
