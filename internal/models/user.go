package models

import "time"

const (
	RoleReader = "reader"
	RoleEditor = "editor"
)

type User struct {
	IDNumber         string    `json:"id_number" bson:"id_number"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     string    `json:"-" bson:"password_hash"`
	TwoFactorEnabled bool      `json:"two_factor_enabled" bson:"two_factor_enabled"`
	BackupCodes      []string  `json:"-" bson:"backup_codes"`
	Role             string    `json:"role" bson:"role"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// UserProfileResponse: то, что отдаём на странице настроек.
type UserProfileResponse struct {
	IDNumber         string `json:"id_number"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

func (u *User) Profile() UserProfileResponse {
	return UserProfileResponse{
		IDNumber:         u.IDNumber,
		Name:             u.Name,
		Email:            u.Email,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}
