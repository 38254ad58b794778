package models

import (
	"strings"
	"time"

	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

const minPasswordLength = 8

// User is an account that owns family members.
type User struct {
	ID               id.UserID
	Name             string
	PasswordHash     string
	RefreshTokenHash *string
	CreatedAt        time.Time
}

// RegisterRequest is the payload of POST /users.
type RegisterRequest struct {
	Name         string `json:"name"`
	Password     string `json:"password"`
	ConfPassword string `json:"confPassword"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 255 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 255 characters")
	}
	if len(r.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if r.Password != r.ConfPassword {
		return dErrors.New(dErrors.CodeValidation, "password and confirm password do not match")
	}
	return nil
}

// LoginRequest is the payload of POST /login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *LoginRequest) Validate() error {
	if r.Name == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "name and password are required")
	}
	return nil
}

// Session is the outcome of a successful login: a short-lived access token
// returned in the body and a refresh token delivered as a cookie.
type Session struct {
	UserID           id.UserID
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccessClaims identify the caller of an authenticated request.
type AccessClaims struct {
	UserID    id.UserID
	Name      string
	JTI       string
	ExpiresAt time.Time
}
