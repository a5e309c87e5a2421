package models

import "time"

// UserDB represents a user record in the database
type UserDB struct {
	ID             int64     `json:"id" db:"id"`                 // Primary key
	Name           string    `json:"name" db:"name"`             // Display name
	Email          string    `json:"email" db:"email"`           // Unique email, used as login
	HashedPassword string    `json:"-" db:"hashed_password"`     // bcrypt hash
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // Creation timestamp
}
