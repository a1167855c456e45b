package models

import (
	"time"

	"github.com/google/uuid"
)

// User maps to table `users`
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Feedback maps to table `feedback`
type Feedback struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}
