package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"wallmag/internal/config"
	"wallmag/internal/db/migrations"

	"github.com/pressly/goose/v3"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("нет встроенных миграций")
	}

	body, err := fs.ReadFile(migrations.Migrations, files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "-- +goose Up") || !strings.Contains(string(body), "backup_codes") {
		t.Fatal("миграция users не содержит ожидаемых секций")
	}
}

func TestMigrate_PropagatesGooseError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return boom
	}

	cfg := &config.Config{DocumentStoreURL: "postgres://u:p@127.0.0.1:1/db?sslmode=disable"}
	err := Migrate(context.Background(), cfg)
	if !errors.Is(err, boom) {
		t.Fatalf("ожидалась ошибка goose, получили %v", err)
	}
	if gotDir != "." {
		t.Fatalf("миграции должны запускаться из корня FS, получили %q", gotDir)
	}
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	cfg := &config.Config{RedisURL: "not-a-url://"}
	if _, err := NewRedisClient(context.Background(), cfg); err == nil {
		t.Fatal("ожидалась ошибка разбора REDIS_URL")
	}
}
