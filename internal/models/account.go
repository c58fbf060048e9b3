package models

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Account represents a back-office staff member
type Account struct {
	ID           string    `json:"_id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Core         int       `json:"Core" db:"core"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AccountRequest represents an account creation request
type AccountRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin staff"`
}

// LoginRequest carries staff credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// EditEmailRequest changes the email of the signed-in account
type EditEmailRequest struct {
	NewEmail string `json:"newEmail"`
}
