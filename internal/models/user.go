package models

import "time"

// User is an account holder. PasswordHash is never serialized.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // unique, enforced at write time
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
