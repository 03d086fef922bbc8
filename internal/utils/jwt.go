package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Типы токенов (claim "typ"); токен одного типа не принимается вместо другого.
const (
	TokenTypeForgot  = "forgot"
	TokenType2FA     = "2fa"
	TokenTypeSession = "session"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type TokenClaims struct {
	Subject   string
	Role      string
	Type      string
	ID        string // jti
	ExpiresAt time.Time
}

// GenerateToken подписывает HS256 токен и возвращает его вместе с jti.
func GenerateToken(secret, subject, role, tokenType string, duration time.Duration) (string, string, error) {
	if secret == "" {
		return "", "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	jti := uuid.NewString()

	claims := jwt.MapClaims{
		"sub": subject,
		"typ": tokenType,
		"jti": jti,
		"exp": now.Add(duration).Unix(),
		"iat": now.Unix(),
	}
	if role != "" {
		claims["role"] = role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// ParseToken проверяет подпись, срок и тип токена.
func ParseToken(secret, tokenString, expectedType string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	typ, _ := claims["typ"].(string)
	if sub == "" || typ != expectedType {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)

	return &TokenClaims{
		Subject:   sub,
		Role:      role,
		Type:      typ,
		ID:        jti,
		ExpiresAt: exp.Time,
	}, nil
}
