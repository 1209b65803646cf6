package entity

import (
	"time"
)

type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Password    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUser(name, email, phoneNumber, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Name:        name,
		Email:       email,
		PhoneNumber: phoneNumber,
		Password:    passwordHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply overwrites the mutable fields and bumps the update timestamp.
func (u *User) Apply(name, email, phoneNumber string) {
	u.Name = name
	u.Email = email
	u.PhoneNumber = phoneNumber
	u.UpdatedAt = time.Now().UTC()
}
