package handlers

import (
	"encoding/json"
	"net/http"

	"wallmag/internal/logger"
	"wallmag/internal/middleware"
	"wallmag/internal/models"
	"wallmag/internal/reqctx"
	"wallmag/internal/services"
	helpers "wallmag/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	IDNumber string `json:"id_number" example:"12345"`
	Password string `json:"password" example:"secret-password"`
}

type userResponse struct {
	User models.UserProfileResponse `json:"user"`
}

type twoFactorRequiredResponse struct {
	Message           string `json:"message" example:"Two-factor code sent"`
	TwoFactorRequired bool   `json:"two_factor_required" example:"true"`
}

// Login godoc
// @Summary Вход по id_number и паролю
// @Description Без 2FA ставит cookie session. С включённой 2FA отправляет код на почту, ставит cookie twofa_token и отвечает 202.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} userResponse
// @Success 202 {object} twoFactorRequiredResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Login", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	res, err := h.authService.Login(r.Context(), req.IDNumber, req.Password)
	if err != nil {
		respondMapped(w, r, err)
		return
	}

	if res.TwoFactorRequired {
		setTokenCookie(w, TwoFactorCookieName, res.ChallengeToken, services.TwoFactorTokenTTL)
		helpers.JSON(w, http.StatusAccepted, twoFactorRequiredResponse{
			Message:           "Two-factor code sent",
			TwoFactorRequired: true,
		})
		return
	}

	setTokenCookie(w, SessionCookieName, res.SessionToken, h.authService.SessionTTL())
	helpers.JSON(w, http.StatusOK, userResponse{User: res.User.Profile()})
}

type verify2FARequest struct {
	Code string `json:"code" example:"123456"`
}

// Verify2FA godoc
// @Summary Подтверждение второго фактора
// @Description Принимает код из письма или резервный код (одноразовый). Требует cookie twofa_token.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body verify2FARequest true "Код"
// @Success 200 {object} userResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/auth/2fa/verify [post]
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	challenge := cookieValue(r, TwoFactorCookieName)
	if challenge == "" {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req verify2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	res, err := h.authService.Verify2FA(r.Context(), challenge, req.Code)
	if err != nil {
		respondMapped(w, r, err)
		return
	}

	clearCookie(w, TwoFactorCookieName)
	setTokenCookie(w, SessionCookieName, res.SessionToken, h.authService.SessionTTL())
	helpers.JSON(w, http.StatusOK, userResponse{User: res.User.Profile()})
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Tags profile
// @Security CookieAuth
// @Produce json
// @Success 200 {object} userResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/user/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	idNumber, ok := reqctx.GetIDNumber(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	user, err := h.authService.Profile(r.Context(), idNumber)
	if err != nil {
		// сессия есть, а пользователя уже нет
		respondMapped(w, r, err, ErrorCase{Err: services.ErrUserNotFound, Status: http.StatusUnauthorized, Message: msgUnauthorized})
		return
	}
	helpers.JSON(w, http.StatusOK, userResponse{User: user.Profile()})
}

// RefreshSession godoc
// @Summary Продление сессии
// @Description Выдаёт новую cookie session, старый токен отзывается.
// @Tags auth
// @Security CookieAuth
// @Produce json
// @Success 200 {object} helpers.MessageResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/auth/refresh-session [post]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	idNumber, ok := reqctx.GetIDNumber(r.Context())
	session, okSession := reqctx.GetSession(r.Context())
	if !ok || !okSession {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	token, err := h.authService.RefreshSession(r.Context(), idNumber, session.ID, session.ExpiresAt)
	if err != nil {
		respondMapped(w, r, err)
		return
	}

	setTokenCookie(w, SessionCookieName, token, h.authService.SessionTTL())
	helpers.Message(w, http.StatusOK, "Session refreshed")
}

// Logout godoc
// @Summary Выход
// @Description Тело не требуется. Текущая сессия (если есть) отзывается, cookie удаляется.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	clearCookie(w, SessionCookieName)
	if token != "" {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			respondMapped(w, r, err)
			return
		}
	}
	helpers.Message(w, http.StatusOK, "Logged out")
}
