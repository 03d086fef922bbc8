package services

import "errors"

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrOTPNotRequested         = errors.New("otp expired or not requested")
	ErrInvalidOTP              = errors.New("invalid otp")
	ErrTooManyAttempts         = errors.New("too many otp attempts")
	ErrOTPNotVerified          = errors.New("otp not verified")
	ErrPasswordTooShort        = errors.New("password too short")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication already enabled")
	ErrTwoFactorNotEnabled     = errors.New("two-factor authentication is not enabled")
	ErrInvalidCategory         = errors.New("invalid category")
	ErrPostNotFound            = errors.New("post not found")
	ErrEmailDelivery           = errors.New("email delivery failed")
)
