package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID            uuid.UUID
	FullName      string
	Email         string
	Role          application.Role
	ContactNumber string
	Address       string
	PasswordHash  []byte
	CreatedAt     time.Time
}
