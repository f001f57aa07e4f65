package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account able to sign in. PasswordHash is only populated when a
// lookup explicitly asks for it.
type User struct {
	ID           uuid.UUID
	Name         *string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
