package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "wallmag/docs"
	"wallmag/internal/app"
	"wallmag/internal/config"
	"wallmag/internal/logger"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// @title          Wall-Magazine API
// @version        1.0
// @description    Публикации стенгазеты, модерация, вход с 2FA и сброс пароля по OTP.
// @BasePath       /

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name session
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// логгер ещё не настроен
		logger.InitLogger(&config.Config{})
		logger.Log.Fatal("Ошибка загрузки конфига", zap.Error(err))
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	warnings, err := cfg.Validate()
	if err != nil {
		logger.Log.Fatal("Некорректная конфигурация", zap.Error(err))
	}
	for _, w := range warnings {
		logger.Log.Warn("Конфигурация", zap.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.InitApp(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Ошибка инициализации приложения", zap.Error(err))
	}
	defer application.Close()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           86400,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsMiddleware.Handler(application.Router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Log.Info("Сервер запущен", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Ошибка остановки сервера", zap.Error(err))
	}
}
