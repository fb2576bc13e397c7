package dto

import "time"

type SignInRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=4,max=75"`
	UserName string `json:"userName" validate:"required,min=3,max=15"`
	Email    string `json:"email" validate:"required,min=3,email"`
	Password string `json:"password" validate:"required,min=3"`
}

// TokenResponse is returned by sign-in.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// APIResponse is the generic success/failure acknowledgement.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the body written for mapped errors.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type UserProfile struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Availability struct {
	Available bool `json:"available"`
}
