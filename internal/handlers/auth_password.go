package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"wallmag/internal/logger"
	"wallmag/internal/services"
	helpers "wallmag/internal/utils/helpers"
)

type PasswordHandler struct {
	svc *services.PasswordService
}

func NewPasswordHandler(svc *services.PasswordService) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

type forgotReq struct {
	IDNumber string `json:"id_number" example:"12345"`
}

// Forgot godoc
// @Summary Запрос OTP для сброса пароля
// @Description Генерирует шестизначный код, отправляет его на почту пользователя и ставит cookie forgot_token (5 минут).
// @Tags password
// @Accept json
// @Produce json
// @Param input body forgotReq true "Идентификатор пользователя"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 404 {object} helpers.MessageResponse
// @Failure 500 {object} helpers.MessageResponse
// @Router /api/auth/forgot-password [post]
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.IDNumber) == "" {
		logger.WithCtx(r.Context()).Warn("Невалидный payload в Forgot")
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	token, err := h.svc.RequestReset(r.Context(), req.IDNumber)
	if err != nil {
		respondMapped(w, r, err)
		return
	}

	setTokenCookie(w, ForgotCookieName, token, services.ForgotTokenTTL)
	helpers.Message(w, http.StatusOK, "OTP sent successfully")
}

type verifyOTPReq struct {
	OTP string `json:"otp" example:"123456"`
}

// VerifyOTP godoc
// @Summary Проверка OTP
// @Description Проверяет код для пользователя из cookie forgot_token. После 5 неудачных попыток код аннулируется.
// @Tags password
// @Accept json
// @Produce json
// @Param input body verifyOTPReq true "Код из письма"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/auth/verify-otp [post]
func (h *PasswordHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, ForgotCookieName)
	if token == "" {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req verifyOTPReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.OTP) == "" {
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if err := h.svc.VerifyOTP(r.Context(), token, req.OTP); err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "OTP verified")
}

type resetReq struct {
	NewPassword string `json:"new_password" example:"a-long-new-password"`
}

// Reset godoc
// @Summary Сброс пароля
// @Description Устанавливает новый пароль после подтверждённого OTP; cookie forgot_token удаляется.
// @Tags password
// @Accept json
// @Produce json
// @Param input body resetReq true "Новый пароль (не короче 8 символов)"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/auth/reset-password [post]
func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, ForgotCookieName)
	if token == "" {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), token, req.NewPassword); err != nil {
		respondMapped(w, r, err)
		return
	}

	clearCookie(w, ForgotCookieName)
	helpers.Message(w, http.StatusOK, "Password has been reset")
}
