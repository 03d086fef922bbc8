package handlers

import (
	"encoding/json"
	"net/http"

	"wallmag/internal/reqctx"
	"wallmag/internal/services"
	helpers "wallmag/internal/utils/helpers"
)

type TwoFactorHandler struct {
	svc *services.TwoFactorService
}

func NewTwoFactorHandler(svc *services.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{svc: svc}
}

type backupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

type disable2FARequest struct {
	Password string `json:"password" example:"secret-password"`
}

// Enable godoc
// @Summary Включить 2FA
// @Description Включает двухфакторную аутентификацию и один раз возвращает 10 резервных кодов.
// @Tags two-factor
// @Security CookieAuth
// @Produce json
// @Success 200 {object} backupCodesResponse
// @Failure 401 {object} helpers.MessageResponse
// @Failure 409 {object} helpers.MessageResponse
// @Router /api/auth/2fa/setup [post]
func (h *TwoFactorHandler) Enable(w http.ResponseWriter, r *http.Request) {
	idNumber, ok := reqctx.GetIDNumber(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	codes, err := h.svc.Enable(r.Context(), idNumber)
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, backupCodesResponse{BackupCodes: codes})
}

// Disable godoc
// @Summary Отключить 2FA
// @Tags two-factor
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param input body disable2FARequest true "Текущий пароль"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 401 {object} helpers.MessageResponse
// @Router /api/auth/2fa/setup [delete]
func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	idNumber, ok := reqctx.GetIDNumber(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req disable2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if err := h.svc.Disable(r.Context(), idNumber, req.Password); err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Two-factor authentication disabled")
}
