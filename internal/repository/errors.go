package repository

import "errors"

// ErrNotFound: запись не найдена (пользователь, пост, OTP).
var ErrNotFound = errors.New("repository: not found")

// ErrAlreadyExists: нарушение уникальности (id_number уже занят).
var ErrAlreadyExists = errors.New("repository: already exists")
