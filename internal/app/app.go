package app

import (
	"context"
	"fmt"
	"time"

	"wallmag/internal/config"
	"wallmag/internal/db"
	"wallmag/internal/handlers"
	"wallmag/internal/logger"
	"wallmag/internal/middleware"
	"wallmag/internal/repository"
	"wallmag/internal/routes"
	"wallmag/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	mailQueueSize    = 100
	mailWorkers      = 3
	shutdownDeadline = 5 * time.Second
)

type App struct {
	Router *mux.Router
	Auth   *services.AuthService

	mailer  *services.Mailer
	cancel  context.CancelFunc
	closers []func(context.Context) error
}

// userStore поднимает хранилище пользователей по схеме DOCUMENT_STORE_URL.
func userStore(ctx context.Context, cfg *config.Config) (services.UserRepo, handlers.HealthCheck, []func(context.Context) error, error) {
	if cfg.StoreDriver() == "mongo" {
		client, database, err := db.NewMongoDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewMongoUserRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return repo, ping, []func(context.Context) error{client.Disconnect}, nil
	}

	if err := db.Migrate(ctx, cfg); err != nil {
		return nil, nil, nil, err
	}
	pool, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closePool := func(context.Context) error {
		pool.Close()
		return nil
	}
	return repository.NewUserRepository(pool), pool.Ping, []func(context.Context) error{closePool}, nil
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	users, storeCheck, closers, err := userStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closers...)

	rdb, err := db.NewRedisClient(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

	// Репозитории
	otpStore := repository.NewOTPStore(rdb)
	denylist := repository.NewSessionDenylist(rdb)
	postStore := repository.NewPostStore(repository.SeedPosts(time.Now()))

	// Сервисы
	emailService := services.NewEmailService(cfg)
	if !emailService.Configured() {
		logger.Log.Warn("Почта не настроена, письма отправляться не будут")
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.mailer = services.NewMailer(emailService, mailQueueSize, mailWorkers)
	a.mailer.Start(workerCtx)

	notifier := services.NewModerationNotifier(a.mailer, cfg.ModeratorEmail)

	passwordService := services.NewPasswordService(users, otpStore, emailService, cfg.JWTSecret, cfg.OTPBcryptCost, cfg.EmailDeliveryRequired)
	a.Auth = services.NewAuthService(users, otpStore, emailService, denylist, cfg.JWTSecret,
		cfg.SessionDuration(), cfg.OTPBcryptCost, cfg.EmailDeliveryRequired)
	twoFactorService := services.NewTwoFactorService(users, cfg.OTPBcryptCost)
	postService := services.NewPostService(postStore, notifier)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	// Хендлеры
	h := routes.Handlers{
		Password:   handlers.NewPasswordHandler(passwordService),
		Auth:       handlers.NewAuthHandler(a.Auth),
		TwoFactor:  handlers.NewTwoFactorHandler(twoFactorService),
		Posts:      handlers.NewPostHandler(postService),
		Moderation: handlers.NewModerationHandler(postService),
		Logs:       handlers.NewAdminLogsHandler(logger.LogDir),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"store": storeCheck,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	}

	// Маршруты
	a.Router = mux.NewRouter()
	routes.InitRoutes(a.Router, h, routes.Options{Sessions: a.Auth, Metrics: metrics})

	logger.Log.Info("Приложение инициализировано",
		zap.String("store", cfg.StoreDriver()),
		zap.String("dsn", cfg.GetDSNSafe()),
	)
	return a, nil
}

// Close останавливает воркеры почты и закрывает соединения.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
		a.mailer.Wait()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Log.Warn("Ошибка закрытия ресурса", zap.Error(err))
		}
	}
}
