package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost: стоимость bcrypt для паролей пользователей.
const PasswordCost = 12

func HashPassword(password string) (string, error) {
	return HashWithCost(password, PasswordCost)
}

// HashWithCost хеширует строку bcrypt; cost вне допустимого диапазона заменяется на bcrypt.DefaultCost.
func HashWithCost(value string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(value), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
