// useradd заводит пользователя в хранилище: аккаунты выдаёт редакция, самостоятельной регистрации нет.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"wallmag/internal/config"
	"wallmag/internal/db"
	"wallmag/internal/logger"
	"wallmag/internal/models"
	"wallmag/internal/repository"
	"wallmag/internal/services"
	"wallmag/internal/utils"

	"go.uber.org/zap"
)

func main() {
	id := flag.String("id", "", "id_number (обязательно)")
	name := flag.String("name", "", "имя")
	email := flag.String("email", "", "email (обязательно)")
	role := flag.String("role", models.RoleReader, "reader | editor")
	flag.Parse()

	password := os.Getenv("WALLMAG_PASSWORD")
	if *id == "" || *email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: WALLMAG_PASSWORD=... useradd -id 12345 -email a@b.c [-name N] [-role editor]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.Log = "dev"
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var users services.UserRepo
	if cfg.StoreDriver() == "mongo" {
		client, database, err := db.NewMongoDatabase(ctx, cfg)
		if err != nil {
			logger.Log.Fatal("Нет подключения к MongoDB", zap.Error(err))
		}
		defer client.Disconnect(context.Background())
		repo := repository.NewMongoUserRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Log.Fatal("Не удалось создать индексы", zap.Error(err))
		}
		users = repo
	} else {
		if err := db.Migrate(ctx, cfg); err != nil {
			logger.Log.Fatal("Ошибка миграций", zap.Error(err))
		}
		pool, err := db.NewPostgresConnection(ctx, cfg)
		if err != nil {
			logger.Log.Fatal("Нет подключения к Postgres", zap.Error(err))
		}
		defer pool.Close()
		users = repository.NewUserRepository(pool)
	}

	auth := services.NewAuthService(users, nil, nil, nil, cfg.JWTSecret, cfg.SessionDuration(), cfg.OTPBcryptCost, false)
	user := &models.User{IDNumber: *id, Name: *name, Email: *email, Role: *role}
	if err := auth.CreateUser(ctx, user, password); err != nil {
		logger.Log.Fatal("Не удалось создать пользователя", zap.String("id_number", *id), zap.Error(err))
	}
	fmt.Printf("user %s created (role %s, bcrypt cost %d)\n", user.IDNumber, user.Role, utils.PasswordCost)
}
