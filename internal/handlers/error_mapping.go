package handlers

import (
	"errors"
	"net/http"

	"wallmag/internal/logger"
	"wallmag/internal/services"
	helpers "wallmag/internal/utils/helpers"

	"go.uber.org/zap"
)

const (
	msgInvalidRequest = "Invalid request"
	msgInternal       = "Internal Server Error"
	msgUnauthorized   = "Unauthorized"
)

// ErrorCase сопоставляет sentinel-ошибку сервиса со статусом и сообщением.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

var defaultErrorCases = []ErrorCase{
	{Err: services.ErrInvalidRequest, Status: http.StatusBadRequest, Message: msgInvalidRequest},
	{Err: services.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
	{Err: services.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid credentials"},
	{Err: services.ErrUnauthorized, Status: http.StatusUnauthorized, Message: msgUnauthorized},
	{Err: services.ErrOTPNotRequested, Status: http.StatusBadRequest, Message: "OTP expired or not requested"},
	{Err: services.ErrInvalidOTP, Status: http.StatusBadRequest, Message: "Invalid OTP"},
	{Err: services.ErrTooManyAttempts, Status: http.StatusBadRequest, Message: "Too many attempts, request a new OTP"},
	{Err: services.ErrOTPNotVerified, Status: http.StatusBadRequest, Message: "OTP not verified"},
	{Err: services.ErrPasswordTooShort, Status: http.StatusBadRequest, Message: "Password must be at least 8 characters"},
	{Err: services.ErrTwoFactorAlreadyEnabled, Status: http.StatusConflict, Message: "Two-factor authentication is already enabled"},
	{Err: services.ErrTwoFactorNotEnabled, Status: http.StatusBadRequest, Message: "Two-factor authentication is not enabled"},
	{Err: services.ErrInvalidCategory, Status: http.StatusBadRequest, Message: "Invalid category"},
	{Err: services.ErrPostNotFound, Status: http.StatusNotFound, Message: "Post not found"},
}

// respondMapped отвечает по таблице; всё прочее: 500 с общим сообщением, причина только в логе.
func respondMapped(w http.ResponseWriter, r *http.Request, err error, cases ...ErrorCase) {
	if len(cases) == 0 {
		cases = defaultErrorCases
	}
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			helpers.Error(w, cs.Status, cs.Message)
			return
		}
	}

	logger.WithCtx(r.Context()).Error("Внутренняя ошибка",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	helpers.Error(w, http.StatusInternalServerError, msgInternal)
}
