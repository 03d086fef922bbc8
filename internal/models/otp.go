package models

import "time"

// Назначения OTP; используются как префикс ключа в кэше.
const (
	OTPPurposeForgot   = "forgot"
	OTPPurposeLogin2FA = "login2fa"
)

// OTPEntry: запись в кэше. Hash никогда не уходит клиенту.
type OTPEntry struct {
	Purpose  string
	IDNumber string
	Hash     string
	Verified bool
	Attempts int
	TTL      time.Duration
}
