package handlers

import (
	"context"
	"net/http"
	"time"

	"wallmag/internal/logger"
	helpers "wallmag/internal/utils/helpers"

	"go.uber.org/zap"
)

// HealthCheck проверяет одну зависимость (БД, кэш).
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

// Healthz godoc
// @Summary Проверка живости
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.WithCtx(r.Context()).Warn("Проверка здоровья не пройдена", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	helpers.JSON(w, status, resp)
}
